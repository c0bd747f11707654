package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"talentbridge/recruiting-api/internal/models"
)

type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	Save(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id uint) (*models.Offer, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Offer, error)
	FindEligibleByIDs(ctx context.Context, ids []uint) ([]models.Offer, error)
	ListPublic(ctx context.Context, filter models.OfferFilter) ([]models.Offer, error)
	ListByCompany(ctx context.Context, companyID uint) ([]models.Offer, error)
	FindStaleIndex(ctx context.Context, limit int) ([]models.Offer, error)
	MarkIndexed(ctx context.Context, id uint, at time.Time) error
	WithTx(tx *gorm.DB) OfferRepository
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) WithTx(tx *gorm.DB) OfferRepository {
	return &offerRepository{db: tx}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	if err := r.db.WithContext(ctx).Omit("Company").Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *offerRepository) Save(ctx context.Context, offer *models.Offer) error {
	if err := r.db.WithContext(ctx).Omit("Company").Save(offer).Error; err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	return nil
}

func (r *offerRepository) FindByID(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).Preload("Company").Where("id = ?", id).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("offer not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}
	return &offer, nil
}

func (r *offerRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Offer, error) {
	var offers []models.Offer
	if len(ids) == 0 {
		return offers, nil
	}
	if err := r.db.WithContext(ctx).Preload("Company").Where("id IN ?", ids).Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to find offers: %w", err)
	}
	return offers, nil
}

// FindEligibleByIDs returns the requested offers that are published, not
// archived and open on both the offer and the company side.
func (r *offerRepository) FindEligibleByIDs(ctx context.Context, ids []uint) ([]models.Offer, error) {
	var offers []models.Offer
	if len(ids) == 0 {
		return offers, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Company").
		Joins("JOIN companies ON companies.id = offers.company_id").
		Where("offers.id IN ?", ids).
		Where("offers.published = ? AND offers.archived = ?", true, false).
		Where("offers.accepting_applications = ? AND companies.accepting_applications = ?", true, true).
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible offers: %w", err)
	}
	return offers, nil
}

func (r *offerRepository) ListPublic(ctx context.Context, filter models.OfferFilter) ([]models.Offer, error) {
	query := r.db.WithContext(ctx).
		Preload("Company").
		Where("published = ? AND archived = ?", true, false)

	if filter.Domain != "" {
		query = query.Where("LOWER(domain) = ?", strings.ToLower(filter.Domain))
	}
	if filter.City != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(filter.City))
	}
	if filter.Country != "" {
		query = query.Where("LOWER(country) = ?", strings.ToLower(filter.Country))
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var offers []models.Offer
	if err := query.Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

func (r *offerRepository) ListByCompany(ctx context.Context, companyID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list company offers: %w", err)
	}
	return offers, nil
}

// FindStaleIndex returns offers changed since they were last pushed to the vector index.
func (r *offerRepository) FindStaleIndex(ctx context.Context, limit int) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("indexed_at IS NULL OR indexed_at < updated_at").
		Order("updated_at ASC").
		Limit(limit).
		Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find offers to index: %w", err)
	}
	return offers, nil
}

// MarkIndexed leaves updated_at untouched.
func (r *offerRepository) MarkIndexed(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ?", id).
		UpdateColumn("indexed_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark offer indexed: %w", result.Error)
	}
	return nil
}
