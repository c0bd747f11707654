package models

import (
	"time"
)

type DocumentKind string

const (
	KindCV        DocumentKind = "cv"
	KindVideo     DocumentKind = "video"
	KindPortfolio DocumentKind = "portfolio"
)

var allowedExtensions = map[DocumentKind][]string{
	KindCV:        {".pdf", ".doc", ".docx"},
	KindVideo:     {".mp4", ".avi", ".mov", ".mkv"},
	KindPortfolio: {".pdf", ".zip", ".rar"},
}

func (k DocumentKind) Valid() bool {
	_, ok := allowedExtensions[k]
	return ok
}

func (k DocumentKind) AllowedExtensions() []string {
	return allowedExtensions[k]
}

func (k DocumentKind) Allows(ext string) bool {
	for _, allowed := range allowedExtensions[k] {
		if allowed == ext {
			return true
		}
	}
	return false
}

type Document struct {
	ID               uint         `gorm:"primaryKey;autoIncrement" json:"cvId"`
	UserID           uint         `gorm:"not null;index" json:"user"`
	Name             string       `gorm:"type:varchar(100);not null" json:"nom"`
	Kind             DocumentKind `gorm:"type:varchar(20);not null" json:"type"`
	Filename         string       `gorm:"type:text" json:"fichier"`
	OriginalFileName string       `gorm:"type:text" json:"original_filename"`
	FilePath         string       `gorm:"type:text" json:"-"`
	SizeBytes        int64        `json:"taille_octets"`
	PageCount        int          `json:"pages,omitempty"`
	ExtractedText    string       `gorm:"type:text" json:"-"`
	CreatedAt        time.Time    `json:"dateCreation"`
	UpdatedAt        time.Time    `json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *Document) TableName() string {
	return "documents"
}
