package models

import (
	"encoding/json"
	"time"
)

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Role            Role   `json:"type"`
	FirstName       string `json:"prenom"`
	LastName        string `json:"nom"`
	Phone           string `json:"telephone"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type CompanyRequest struct {
	Name    *string `json:"nomEntreprise"`
	Sector  *string `json:"secteur"`
	City    *string `json:"ville"`
	Country *string `json:"pays"`
}

// OfferRequest is shared by create and update; nil fields are left untouched on update.
type OfferRequest struct {
	Title                 *string    `json:"titre"`
	Position              *string    `json:"poste"`
	Domain                *string    `json:"domaine"`
	Specialty             *string    `json:"specialite"`
	Level                 *string    `json:"niveau"`
	ContractType          *string    `json:"type_contrat"`
	WorkMode              *string    `json:"mode_travail"`
	City                  *string    `json:"ville"`
	Country               *string    `json:"pays"`
	Description           *string    `json:"description"`
	SalaryMin             *int       `json:"salaire_min"`
	SalaryMax             *int       `json:"salaire_max"`
	ExperienceMin         *int       `json:"experience_min"`
	ExperienceMax         *int       `json:"experience_max"`
	Tags                  []string   `json:"tags"`
	CooldownDays          *int       `json:"relance_days"`
	AcceptingApplications *bool      `json:"recevoirCandidatures"`
	Published             *bool      `json:"estPubliee"`
	Deadline              *time.Time `json:"dateLimite"`
}

type OfferFilter struct {
	Domain  string
	City    string
	Country string
	Query   string
}

type OfferView struct {
	Offer
	CompanyName string `json:"entreprise_nom"`
}

type ApplyRequest struct {
	DocumentID uint `json:"cv"`
	OfferID    uint `json:"offre"`
}

// BulkApplyRequest keeps offer ids raw so numbers and numeric strings are both accepted.
type BulkApplyRequest struct {
	DocumentID uint              `json:"documentId"`
	OfferIDs   []json.RawMessage `json:"offerIds"`
}

type StatusRequest struct {
	Status ApplicationStatus `json:"statut"`
}

type RefusedOffer struct {
	OfferTitle  string     `json:"offre"`
	OfferID     uint       `json:"offreId"`
	CompanyName string     `json:"entreprise"`
	Errors      []string   `json:"errors"`
	Reason      string     `json:"reason"`
	RetryAfter  *time.Time `json:"retry_after,omitempty"`
}

type BulkDetails struct {
	DocumentID  uint `json:"cv"`
	OffersTotal int  `json:"offres_total"`
}

// BulkApplyResponse is returned on every bulk path; Refused stays null when nothing was refused.
type BulkApplyResponse struct {
	Success      bool           `json:"success"`
	CreatedCount int            `json:"created_count"`
	RefusedCount int            `json:"refused_count"`
	Created      []uint         `json:"envois_ids"`
	Refused      []RefusedOffer `json:"refusees"`
	Details      BulkDetails    `json:"details"`
	Message      string         `json:"message,omitempty"`
}

type ApplicationView struct {
	ID          uint              `json:"envoiId"`
	DocumentID  uint              `json:"cv"`
	OfferID     uint              `json:"offre"`
	Status      ApplicationStatus `json:"statut"`
	SentAt      time.Time         `json:"dateEnvoi"`
	Snapshot    Snapshot          `json:"snapshot"`
	CandidateID uint              `json:"candidat_id"`
	Candidate   string            `json:"candidat_nom,omitempty"`
	Email       string            `json:"candidat_email,omitempty"`
	Phone       string            `json:"candidat_telephone,omitempty"`
	Document    string            `json:"cv_nom,omitempty"`
}

type ApplicationStats struct {
	Total    int `json:"total"`
	Sent     int `json:"envoyes"`
	Pending  int `json:"en_attente"`
	Accepted int `json:"acceptes"`
	Rejected int `json:"refuses"`
}

type ApplicationListResponse struct {
	Applications []ApplicationView `json:"envois"`
	Stats        ApplicationStats  `json:"statistiques"`
}

type OfferMatch struct {
	OfferID     uint    `json:"offre_id"`
	Title       string  `json:"titre"`
	CompanyName string  `json:"entreprise_nom"`
	City        string  `json:"ville"`
	Score       float32 `json:"score"`
}

func NewApplicationView(a *Application) ApplicationView {
	view := ApplicationView{
		ID:          a.ID,
		DocumentID:  a.DocumentID,
		OfferID:     a.OfferID,
		Status:      a.Status,
		SentAt:      a.CreatedAt,
		Snapshot:    a.Snapshot,
		CandidateID: a.CandidateID,
		Document:    a.Document.Name,
	}
	if a.Candidate.ID != 0 {
		view.Candidate = a.Candidate.DisplayName()
		view.Email = a.Candidate.Email
		view.Phone = a.Candidate.Phone
	}
	return view
}
