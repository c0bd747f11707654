package models

import (
	"time"
)

type ApplicationStatus string

const (
	StatusSent     ApplicationStatus = "envoye"
	StatusPending  ApplicationStatus = "en_attente"
	StatusAccepted ApplicationStatus = "accepte"
	StatusRejected ApplicationStatus = "refuse"
)

// Final statuses cannot be changed anymore.
func (s ApplicationStatus) Final() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Snapshot holds offer and company data copied when the application is created.
// The columns are writable on create only.
type Snapshot struct {
	CompanyName  string `gorm:"<-:create;type:varchar(100)" json:"entreprise_nom"`
	OfferTitle   string `gorm:"<-:create;type:varchar(200)" json:"offre_titre"`
	OfferDomain  string `gorm:"<-:create;type:varchar(100)" json:"offre_domaine"`
	OfferCity    string `gorm:"<-:create;type:varchar(100)" json:"offre_ville"`
	OfferCountry string `gorm:"<-:create;type:varchar(100)" json:"offre_pays"`
}

type Application struct {
	ID          uint              `gorm:"primaryKey;autoIncrement" json:"envoiId"`
	DocumentID  uint              `gorm:"not null;index:idx_applications_pair,priority:1" json:"cv"`
	OfferID     uint              `gorm:"not null;index:idx_applications_pair,priority:2;index" json:"offre"`
	CandidateID uint              `gorm:"not null;index" json:"candidat_id"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null" json:"statut"`
	Snapshot    Snapshot          `gorm:"embedded;embeddedPrefix:snapshot_" json:"snapshot"`
	CreatedAt   time.Time         `gorm:"<-:create;not null;index:idx_applications_pair,priority:3" json:"dateEnvoi"`
	UpdatedAt   time.Time         `json:"-"`

	Document  Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
	Offer     Offer    `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"-"`
	Candidate User     `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}
