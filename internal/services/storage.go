package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/models"
)

type StorageService interface {
	SaveFile(file *multipart.FileHeader, kind models.DocumentKind) (string, string, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// ValidateUpload checks the extension against the document kind and the size limit.
func ValidateUpload(filename string, size int64, kind models.DocumentKind, maxFileSize int64) error {
	if !kind.Valid() {
		return apperror.Validation("invalid document type", map[string]string{
			"type": "must be one of cv, video, portfolio",
		})
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !kind.Allows(ext) {
		return apperror.Validation("invalid file extension", map[string]string{
			"fichier": fmt.Sprintf("extension %q not allowed for %s, expected one of %s", ext, kind, strings.Join(kind.AllowedExtensions(), ", ")),
		})
	}

	if maxFileSize > 0 && size > maxFileSize {
		return apperror.Validation("file too large", map[string]string{
			"fichier": fmt.Sprintf("must not exceed %d MB", maxFileSize/(1024*1024)),
		})
	}

	return nil
}

func (s *storageService) SaveFile(file *multipart.FileHeader, kind models.DocumentKind) (string, string, error) {
	if err := ValidateUpload(file.Filename, file.Size, kind, s.maxFileSize); err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	uniqueFilename := fmt.Sprintf("%s_%s%s", kind, uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filename)
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
