package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultCooldownDays applies when an offer carries no positive cooldown.
const DefaultCooldownDays = 7

type Offer struct {
	ID                    uint           `gorm:"primaryKey;autoIncrement" json:"offreId"`
	CompanyID             uint           `gorm:"not null;index" json:"entreprise_id"`
	Title                 string         `gorm:"type:varchar(200);not null" json:"titre"`
	Position              string         `gorm:"type:varchar(200)" json:"poste"`
	Domain                string         `gorm:"type:varchar(100);index" json:"domaine"`
	Specialty             string         `gorm:"type:varchar(100)" json:"specialite"`
	Level                 string         `gorm:"type:varchar(50)" json:"niveau"`
	ContractType          string         `gorm:"type:varchar(50)" json:"type_contrat"`
	WorkMode              string         `gorm:"type:varchar(50)" json:"mode_travail"`
	City                  string         `gorm:"type:varchar(100);index" json:"ville"`
	Country               string         `gorm:"type:varchar(100)" json:"pays"`
	Description           string         `gorm:"type:text" json:"description"`
	SalaryMin             *int           `json:"salaire_min,omitempty"`
	SalaryMax             *int           `json:"salaire_max,omitempty"`
	ExperienceMin         *int           `json:"experience_min,omitempty"`
	ExperienceMax         *int           `json:"experience_max,omitempty"`
	Tags                  datatypes.JSON `json:"tags"`
	CooldownDays          int            `gorm:"not null" json:"relance_days"`
	AcceptingApplications bool           `gorm:"not null" json:"recevoirCandidatures"`
	Published             bool           `gorm:"not null;index" json:"estPubliee"`
	Archived              bool           `gorm:"not null;index" json:"estArchivee"`
	Deadline              *time.Time     `json:"dateLimite,omitempty"`
	IndexedAt             *time.Time     `json:"-"`
	CreatedAt             time.Time      `json:"dateCreation"`
	UpdatedAt             time.Time      `json:"-"`

	Company Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Offer) TableName() string {
	return "offers"
}

// BeforeSave keeps tags a JSON array so the column is never NULL.
func (o *Offer) BeforeSave(tx *gorm.DB) error {
	if len(o.Tags) == 0 {
		o.Tags = datatypes.JSON("[]")
	}
	return nil
}

// Cooldown is the minimum delay between two applications of the same document.
func (o *Offer) Cooldown() time.Duration {
	days := o.CooldownDays
	if days <= 0 {
		days = DefaultCooldownDays
	}
	return time.Duration(days) * 24 * time.Hour
}
