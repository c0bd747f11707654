package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"talentbridge/recruiting-api/internal/config"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	ctx          context.Context
	db           *gorm.DB
	clock        *fakeClock
	offers       repositories.OfferRepository
	applications repositories.ApplicationRepository
	companies    repositories.CompanyRepository
	service      ApplicationService

	candidate   *models.User
	document    *models.Document
	companyUser *models.User
	company     *models.Company
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	clock := newFakeClock()
	f := &fixture{
		ctx:          context.Background(),
		db:           db,
		clock:        clock,
		offers:       repositories.NewOfferRepository(db),
		applications: repositories.NewApplicationRepository(db),
		companies:    repositories.NewCompanyRepository(db),
	}

	policy := config.PolicyConfig{
		BulkMaxOffers:       100,
		BulkSendsPerHour:    5,
		BulkParallelism:     4,
		ApplyPerMinute:      3,
		DefaultCooldownDays: 7,
	}
	f.service = NewApplicationService(
		repositories.NewTransactor(db),
		f.applications,
		repositories.NewDocumentRepository(db),
		f.offers,
		f.companies,
		clock,
		policy,
	)

	f.candidate = f.user(t, "alice", models.RoleCandidate)
	f.document = f.documentFor(t, f.candidate)
	f.companyUser = f.user(t, "acme", models.RoleCompany)
	f.company = f.newCompany(t, f.companyUser, "Acme", true)
	return f
}

func (f *fixture) newCompany(t *testing.T, owner *models.User, name string, accepting bool) *models.Company {
	t.Helper()
	company := &models.Company{UserID: owner.ID, Name: name, AcceptingApplications: accepting}
	if err := f.companies.Create(f.ctx, company); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return company
}

func (f *fixture) user(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *fixture) documentFor(t *testing.T, owner *models.User) *models.Document {
	t.Helper()
	doc := &models.Document{UserID: owner.ID, Name: "Main CV", Kind: models.KindCV, Filename: "cv.pdf"}
	if err := f.db.Omit("User").Create(doc).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

// openOffer creates a published offer accepting applications; mutate may change it before insert.
func (f *fixture) openOffer(t *testing.T, title string, mutate func(*models.Offer)) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		CompanyID:             f.company.ID,
		Title:                 title,
		Domain:                "Engineering",
		City:                  "Dakar",
		Country:               "Senegal",
		CooldownDays:          7,
		AcceptingApplications: true,
		Published:             true,
	}
	if mutate != nil {
		mutate(offer)
	}
	if err := f.offers.Create(f.ctx, offer); err != nil {
		t.Fatalf("create offer: %v", err)
	}
	return offer
}

func (f *fixture) countApplications(t *testing.T, documentID, offerID uint) int64 {
	t.Helper()
	var count int64
	err := f.db.Model(&models.Application{}).
		Where("document_id = ? AND offer_id = ?", documentID, offerID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}
