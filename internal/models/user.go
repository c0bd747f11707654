package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleGuest     Role = "invite"
	RoleCandidate Role = "candidat"
	RoleCompany   Role = "entreprise"
)

func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleCandidate, RoleCompany:
		return true
	default:
		return false
	}
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null" json:"type"`
	FirstName    string    `gorm:"type:varchar(100)" json:"prenom"`
	LastName     string    `gorm:"type:varchar(100)" json:"nom"`
	Phone        string    `gorm:"type:varchar(20)" json:"telephone"`
	CreatedAt    time.Time `json:"dateInscription"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName falls back to the username when first or last name is missing.
func (u *User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u.Username
}
