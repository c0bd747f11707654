package services

import (
	"errors"
	"time"
)

type Reason string

const (
	ReasonWrongRole        Reason = "wrong_role"
	ReasonNotOwner         Reason = "not_owner"
	ReasonOfferClosed      Reason = "offer_closed"
	ReasonCompanyClosed    Reason = "company_closed"
	ReasonOfferArchived    Reason = "offer_archived"
	ReasonOfferUnpublished Reason = "offer_unpublished"
	ReasonCooldownActive   Reason = "cooldown_active"
	ReasonAlreadyApplied   Reason = "already_applied"
	ReasonOfferNotFound    Reason = "offer_not_found"
	ReasonStoreFailure     Reason = "store_failure"
)

// Refusal is a business rule refusal for one (document, offer) pair.
type Refusal struct {
	Reason     Reason
	Message    string
	RetryAfter *time.Time
}

func (r *Refusal) Error() string {
	return r.Message
}

func AsRefusal(err error) (*Refusal, bool) {
	var refusal *Refusal
	if errors.As(err, &refusal) {
		return refusal, true
	}
	return nil, false
}
