package services

import (
	"context"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
)

type DocumentService interface {
	Upload(ctx context.Context, owner *models.User, name string, kind models.DocumentKind, file *multipart.FileHeader) (*models.Document, error)
	List(ctx context.Context, owner *models.User) ([]models.Document, error)
	Get(ctx context.Context, owner *models.User, id uint) (*models.Document, error)
	Delete(ctx context.Context, owner *models.User, id uint) error
}

type documentService struct {
	documents repositories.DocumentRepository
	storage   StorageService
	pdfParser PDFParserService
}

func NewDocumentService(
	documents repositories.DocumentRepository,
	storage StorageService,
	pdfParser PDFParserService,
) DocumentService {
	return &documentService{
		documents: documents,
		storage:   storage,
		pdfParser: pdfParser,
	}
}

func requireCandidate(user *models.User) error {
	if user == nil || user.Role != models.RoleCandidate {
		return apperror.Forbidden("only candidates can manage documents")
	}
	return nil
}

func (s *documentService) Upload(ctx context.Context, owner *models.User, name string, kind models.DocumentKind, file *multipart.FileHeader) (*models.Document, error) {
	if err := requireCandidate(owner); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperror.Validation("file is required", map[string]string{"fichier": "required"})
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}

	filename, filePath, err := s.storage.SaveFile(file, kind)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		UserID:           owner.ID,
		Name:             name,
		Kind:             kind,
		Filename:         filename,
		OriginalFileName: file.Filename,
		FilePath:         filePath,
		SizeBytes:        file.Size,
	}

	// Text extraction only feeds matching; a failure does not block the upload.
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		content, err := s.pdfParser.ExtractTextWithMetaData(filePath)
		if err != nil {
			log.Printf("⚠️  Could not extract text from %s: %v\n", filename, err)
		} else {
			doc.ExtractedText = content.Text
			doc.PageCount = content.PageCount
		}
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		if delErr := s.storage.DeleteFile(filename); delErr != nil {
			log.Printf("⚠️  Failed to clean up %s: %v\n", filename, delErr)
		}
		return nil, err
	}

	log.Printf("📄 Document %d uploaded by user %d\n", doc.ID, owner.ID)
	return doc, nil
}

func (s *documentService) List(ctx context.Context, owner *models.User) ([]models.Document, error) {
	if err := requireCandidate(owner); err != nil {
		return nil, err
	}
	return s.documents.ListByOwner(ctx, owner.ID)
}

func (s *documentService) Get(ctx context.Context, owner *models.User, id uint) (*models.Document, error) {
	if err := requireCandidate(owner); err != nil {
		return nil, err
	}
	doc, err := s.documents.FindOwned(ctx, id, owner.ID)
	if err != nil {
		return nil, notFoundOr(err, "document not found")
	}
	return doc, nil
}

// Delete removes the document, its applications and the stored file.
func (s *documentService) Delete(ctx context.Context, owner *models.User, id uint) error {
	doc, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, doc.ID); err != nil {
		return notFoundOr(err, "document not found")
	}
	if err := s.storage.DeleteFile(doc.Filename); err != nil {
		log.Printf("⚠️  %v\n", err)
	}
	return nil
}
