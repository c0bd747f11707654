package services

import (
	"testing"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/config"
	"talentbridge/recruiting-api/internal/models"
)

type recordingQueue struct {
	ids []uint
}

func (q *recordingQueue) EnqueueOffer(offerID uint) {
	q.ids = append(q.ids, offerID)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateOfferDefaults(t *testing.T) {
	f := newFixture(t)
	queue := &recordingQueue{}
	svc := NewOfferService(f.offers, f.companies, queue, config.PolicyConfig{DefaultCooldownDays: 7})

	offer, err := svc.Create(f.ctx, f.companyUser, models.OfferRequest{
		Title: strPtr("  Backend Engineer "),
		Tags:  []string{"go", "postgres"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if offer.Title != "Backend Engineer" {
		t.Fatalf("expected trimmed title, got %q", offer.Title)
	}
	if !offer.AcceptingApplications || offer.Published || offer.Archived {
		t.Fatalf("unexpected defaults: accepting=%t published=%t archived=%t", offer.AcceptingApplications, offer.Published, offer.Archived)
	}
	if offer.CooldownDays != 7 {
		t.Fatalf("expected default cooldown 7, got %d", offer.CooldownDays)
	}
	if string(offer.Tags) != `["go","postgres"]` {
		t.Fatalf("unexpected tags %s", offer.Tags)
	}
	if len(queue.ids) != 1 || queue.ids[0] != offer.ID {
		t.Fatalf("expected offer enqueued for indexing, got %v", queue.ids)
	}
}

func TestCreateOfferValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewOfferService(f.offers, f.companies, nil, config.PolicyConfig{DefaultCooldownDays: 7})

	tests := []struct {
		name  string
		req   models.OfferRequest
		field string
	}{
		{name: "missing title", req: models.OfferRequest{}, field: "titre"},
		{name: "salary range", req: models.OfferRequest{Title: strPtr("x"), SalaryMin: intPtr(5000), SalaryMax: intPtr(1000)}, field: "salaire_min"},
		{name: "experience range", req: models.OfferRequest{Title: strPtr("x"), ExperienceMin: intPtr(5), ExperienceMax: intPtr(2)}, field: "experience_min"},
		{name: "negative cooldown", req: models.OfferRequest{Title: strPtr("x"), CooldownDays: intPtr(-1)}, field: "relance_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(f.ctx, f.companyUser, tt.req)
			appErr, ok := err.(*apperror.Error)
			if !ok || appErr.Code != apperror.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := appErr.Fields[tt.field]; !ok {
				t.Fatalf("expected field %q in %v", tt.field, appErr.Fields)
			}
		})
	}

	if _, err := svc.Create(f.ctx, f.candidate, models.OfferRequest{Title: strPtr("x")}); !apperror.Is(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden for candidate, got %v", err)
	}
}

func TestOfferOwnership(t *testing.T) {
	f := newFixture(t)
	svc := NewOfferService(f.offers, f.companies, nil, config.PolicyConfig{DefaultCooldownDays: 7})
	offer := f.openOffer(t, "Backend Engineer", nil)

	other := f.user(t, "globex", models.RoleCompany)
	f.newCompany(t, other, "Globex", true)

	if _, err := svc.Update(f.ctx, other, offer.ID, models.OfferRequest{Title: strPtr("Hijacked")}); !apperror.Is(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	if _, err := svc.Archive(f.ctx, other, offer.ID); !apperror.Is(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden archive, got %v", err)
	}

	toggled, err := svc.ToggleAccepting(f.ctx, f.companyUser, offer.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.AcceptingApplications {
		t.Fatal("expected offer to stop accepting applications")
	}

	archived, err := svc.Archive(f.ctx, f.companyUser, offer.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !archived.Archived {
		t.Fatal("expected archived offer")
	}

	if _, err := svc.Get(f.ctx, nil, offer.ID); !apperror.Is(err, apperror.CodeNotFound) {
		t.Fatalf("archived offer must be hidden from the public, got %v", err)
	}
	if _, err := svc.Get(f.ctx, f.companyUser, offer.ID); err != nil {
		t.Fatalf("owner must still see archived offer: %v", err)
	}
}

func TestListPublicFilters(t *testing.T) {
	f := newFixture(t)
	svc := NewOfferService(f.offers, f.companies, nil, config.PolicyConfig{DefaultCooldownDays: 7})

	f.openOffer(t, "Go Developer", nil)
	f.openOffer(t, "Accountant", func(o *models.Offer) { o.Domain = "Finance"; o.City = "Abidjan" })
	f.openOffer(t, "Hidden", func(o *models.Offer) { o.Published = false })

	all, err := svc.ListPublic(f.ctx, models.OfferFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 published offers, got %d", len(all))
	}

	finance, err := svc.ListPublic(f.ctx, models.OfferFilter{Domain: "finance"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(finance) != 1 || finance[0].Title != "Accountant" {
		t.Fatalf("unexpected domain filter result: %+v", finance)
	}

	search, err := svc.ListPublic(f.ctx, models.OfferFilter{Query: "go dev"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(search) != 1 || search[0].Title != "Go Developer" {
		t.Fatalf("unexpected search result: %+v", search)
	}
}

func TestToggleCompanyAccepting(t *testing.T) {
	f := newFixture(t)
	svc := NewCompanyService(f.companies)

	company, err := svc.ToggleAccepting(f.ctx, f.companyUser)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if company.AcceptingApplications {
		t.Fatal("expected company to be closed after toggle")
	}

	reloaded, err := f.companies.FindByID(f.ctx, company.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AcceptingApplications {
		t.Fatal("toggle was not persisted")
	}

	if _, err := svc.ToggleAccepting(f.ctx, f.candidate); !apperror.Is(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden for candidate, got %v", err)
	}
}
