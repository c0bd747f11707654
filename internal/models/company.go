package models

import "time"

type Company struct {
	ID                    uint      `gorm:"primaryKey;autoIncrement" json:"entrepriseId"`
	UserID                uint      `gorm:"uniqueIndex;not null" json:"user"`
	Name                  string    `gorm:"type:varchar(100);not null" json:"nomEntreprise"`
	Sector                string    `gorm:"type:varchar(100)" json:"secteur"`
	City                  string    `gorm:"type:varchar(100)" json:"ville"`
	Country               string    `gorm:"type:varchar(100)" json:"pays"`
	AcceptingApplications bool      `gorm:"not null" json:"recevoirCandidatures"`
	CreatedAt             time.Time `json:"-"`
	UpdatedAt             time.Time `json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}
