package services

import (
	"context"
	"fmt"
	"time"

	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
)

// CooldownTracker enforces the delay between two applications of the same
// document to the same offer.
type CooldownTracker struct {
	applications repositories.ApplicationRepository
	clock        Clock
}

func NewCooldownTracker(applications repositories.ApplicationRepository, clock Clock) *CooldownTracker {
	return &CooldownTracker{applications: applications, clock: clock}
}

// AllowedAt is the earliest time a new application may follow last.
func AllowedAt(last time.Time, offer *models.Offer) time.Time {
	return last.Add(offer.Cooldown())
}

// Check returns a cooldown refusal when the last application for the pair is
// too recent. Pass the repository bound to the current transaction.
func (t *CooldownTracker) Check(ctx context.Context, applications repositories.ApplicationRepository, document *models.Document, offer *models.Offer) (*Refusal, error) {
	if applications == nil {
		applications = t.applications
	}

	last, err := applications.LatestForPair(ctx, document.ID, offer.ID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}

	allowedAt := AllowedAt(last.CreatedAt, offer)
	if t.clock.Now().Before(allowedAt) {
		return &Refusal{
			Reason:     ReasonCooldownActive,
			Message:    fmt.Sprintf("Document already sent to this offer. You can send it again from %s.", allowedAt.UTC().Format("2006-01-02 15:04")),
			RetryAfter: &allowedAt,
		}, nil
	}
	return nil, nil
}
