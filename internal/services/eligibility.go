package services

import (
	"talentbridge/recruiting-api/internal/models"
)

type eligibilityCheck struct {
	reason  Reason
	message string
	passes  func(candidate *models.User, document *models.Document, offer *models.Offer) bool
}

// Order matters: the first failing check decides the refusal.
var candidateChecks = []eligibilityCheck{
	{
		reason:  ReasonWrongRole,
		message: "Only candidates can send applications.",
		passes: func(candidate *models.User, _ *models.Document, _ *models.Offer) bool {
			return candidate != nil && candidate.Role == models.RoleCandidate
		},
	},
	{
		reason:  ReasonNotOwner,
		message: "This document does not belong to you.",
		passes: func(candidate *models.User, document *models.Document, _ *models.Offer) bool {
			return document != nil && document.UserID == candidate.ID
		},
	},
}

var offerChecks = []eligibilityCheck{
	{
		reason:  ReasonOfferClosed,
		message: "This offer is not accepting applications.",
		passes: func(_ *models.User, _ *models.Document, offer *models.Offer) bool {
			return offer.AcceptingApplications
		},
	},
	{
		reason:  ReasonCompanyClosed,
		message: "This company is not accepting applications.",
		passes: func(_ *models.User, _ *models.Document, offer *models.Offer) bool {
			return offer.Company.AcceptingApplications
		},
	},
	{
		reason:  ReasonOfferArchived,
		message: "This offer is archived.",
		passes: func(_ *models.User, _ *models.Document, offer *models.Offer) bool {
			return !offer.Archived
		},
	},
	{
		reason:  ReasonOfferUnpublished,
		message: "This offer is not published.",
		passes: func(_ *models.User, _ *models.Document, offer *models.Offer) bool {
			return offer.Published
		},
	},
}

// EligibilityEvaluator decides whether a candidate may apply to an offer with
// a document. It reads the state it is given and never touches the store.
type EligibilityEvaluator struct{}

func NewEligibilityEvaluator() *EligibilityEvaluator {
	return &EligibilityEvaluator{}
}

// Evaluate runs the candidate checks, then the offer checks. The offer must
// have its Company loaded.
func (e *EligibilityEvaluator) Evaluate(candidate *models.User, document *models.Document, offer *models.Offer) *Refusal {
	for _, check := range candidateChecks {
		if !check.passes(candidate, document, offer) {
			return &Refusal{Reason: check.reason, Message: check.message}
		}
	}
	return e.EvaluateOffer(offer)
}

// EvaluateOffer explains why an offer is not open, or returns nil.
func (e *EligibilityEvaluator) EvaluateOffer(offer *models.Offer) *Refusal {
	for _, check := range offerChecks {
		if !check.passes(nil, nil, offer) {
			return &Refusal{Reason: check.reason, Message: check.message}
		}
	}
	return nil
}
