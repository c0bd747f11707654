package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"talentbridge/recruiting-api/internal/models"
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	FindByID(ctx context.Context, id uint) (*models.Application, error)
	LatestForPair(ctx context.Context, documentID, offerID uint) (*models.Application, error)
	LockPair(ctx context.Context, documentID, offerID uint) error
	UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus, at time.Time) error
	Delete(ctx context.Context, id uint) error
	ListByCandidate(ctx context.Context, candidateID uint) ([]models.Application, error)
	ListByCompany(ctx context.Context, companyID uint) ([]models.Application, error)
	WithTx(tx *gorm.DB) ApplicationRepository
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) WithTx(tx *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: tx}
}

func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	err := r.db.WithContext(ctx).
		Omit("Document", "Offer", "Candidate").
		Create(application).Error
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Preload("Offer").
		Preload("Offer.Company").
		Preload("Document").
		Preload("Candidate").
		Where("id = ?", id).
		First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &application, nil
}

// LatestForPair returns nil without error when the document was never sent to the offer.
func (r *applicationRepository) LatestForPair(ctx context.Context, documentID, offerID uint) (*models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND offer_id = ?", documentID, offerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find last application: %w", err)
	}
	if len(applications) == 0 {
		return nil, nil
	}
	return &applications[0], nil
}

// LockPair serializes creations for one (document, offer) pair until the
// surrounding transaction ends. On SQLite the single writer connection
// already gives that guarantee.
func (r *applicationRepository) LockPair(ctx context.Context, documentID, offerID uint) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(documentID), int32(offerID)).Error
	if err != nil {
		return fmt.Errorf("failed to lock application pair: %w", err)
	}
	return nil
}

// UpdateStatus only touches status and updated_at; snapshot columns are create-only.
func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("application not found: %w", gorm.ErrRecordNotFound)
	}

	return nil
}

func (r *applicationRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Application{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("application not found: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *applicationRepository) ListByCandidate(ctx context.Context, candidateID uint) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Preload("Document").
		Preload("Candidate").
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

func (r *applicationRepository) ListByCompany(ctx context.Context, companyID uint) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Preload("Document").
		Preload("Candidate").
		Joins("JOIN offers ON offers.id = applications.offer_id").
		Where("offers.company_id = ?", companyID).
		Order("applications.created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list company applications: %w", err)
	}
	return applications, nil
}
