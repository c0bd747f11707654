package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"talentbridge/recruiting-api/internal/models"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	FindByID(ctx context.Context, id uint) (*models.Document, error)
	FindOwned(ctx context.Context, id, ownerID uint) (*models.Document, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Document, error)
	Delete(ctx context.Context, id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create implements DocumentRepository.
func (d *documentRepository) Create(ctx context.Context, document *models.Document) error {
	if err := d.db.WithContext(ctx).Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// FindByID implements DocumentRepository.
func (d *documentRepository) FindByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// FindOwned returns the document only when it belongs to ownerID.
func (d *documentRepository) FindOwned(ctx context.Context, id, ownerID uint) (*models.Document, error) {
	var doc models.Document
	if err := d.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document not found: %w", err)
		}

		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// ListByOwner implements DocumentRepository.
func (d *documentRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Document, error) {
	var docs []models.Document
	if err := d.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// Delete implements DocumentRepository.
func (d *documentRepository) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&models.Document{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("document not found: %w", gorm.ErrRecordNotFound)
	}

	return nil
}
