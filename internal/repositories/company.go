package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"talentbridge/recruiting-api/internal/models"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, id uint) (*models.Company, error)
	FindByUserID(ctx context.Context, userID uint) (*models.Company, error)
	Save(ctx context.Context, company *models.Company) error
	WithTx(tx *gorm.DB) CompanyRepository
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) WithTx(tx *gorm.DB) CompanyRepository {
	return &companyRepository{db: tx}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uint) (*models.Company, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *companyRepository) FindByUserID(ctx context.Context, userID uint) (*models.Company, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *companyRepository) findOne(ctx context.Context, query string, arg any) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where(query, arg).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("company not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return &company, nil
}

// Save writes every column, including a false AcceptingApplications.
func (r *companyRepository) Save(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Save(company).Error; err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}
