package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/config"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
)

type ApplicationService interface {
	Apply(ctx context.Context, candidate *models.User, documentID, offerID uint) (*models.Application, error)
	SubmitBulk(ctx context.Context, candidate *models.User, documentID uint, offerIDs []uint) (*BulkResult, error)
	SetStatus(ctx context.Context, actor *models.User, applicationID uint, status models.ApplicationStatus) (*models.Application, error)
	Get(ctx context.Context, actor *models.User, applicationID uint) (*models.Application, error)
	List(ctx context.Context, actor *models.User) ([]models.Application, models.ApplicationStats, error)
	Delete(ctx context.Context, actor *models.User, applicationID uint) error
}

// BulkResult reports what happened to every requested offer.
type BulkResult struct {
	DocumentID  uint
	OffersTotal int
	Created     []*models.Application
	Refused     []RefusedItem
	Message     string
}

type RefusedItem struct {
	OfferID uint
	Offer   *models.Offer
	Refusal *Refusal
}

func (r *BulkResult) Success() bool {
	return len(r.Created) > 0
}

type applicationService struct {
	transactor   repositories.Transactor
	applications repositories.ApplicationRepository
	documents    repositories.DocumentRepository
	offers       repositories.OfferRepository
	companies    repositories.CompanyRepository
	eligibility  *EligibilityEvaluator
	cooldown     *CooldownTracker
	clock        Clock
	policy       config.PolicyConfig
}

func NewApplicationService(
	transactor repositories.Transactor,
	applications repositories.ApplicationRepository,
	documents repositories.DocumentRepository,
	offers repositories.OfferRepository,
	companies repositories.CompanyRepository,
	clock Clock,
	policy config.PolicyConfig,
) ApplicationService {
	return &applicationService{
		transactor:   transactor,
		applications: applications,
		documents:    documents,
		offers:       offers,
		companies:    companies,
		eligibility:  NewEligibilityEvaluator(),
		cooldown:     NewCooldownTracker(applications, clock),
		clock:        clock,
		policy:       policy,
	}
}

func (s *applicationService) Apply(ctx context.Context, candidate *models.User, documentID, offerID uint) (*models.Application, error) {
	if candidate == nil || candidate.Role != models.RoleCandidate {
		return nil, apperror.Forbidden("only candidates can send applications")
	}
	if documentID == 0 || offerID == 0 {
		return nil, apperror.Validation("invalid application payload", map[string]string{
			"cv":    "required",
			"offre": "required",
		})
	}

	document, err := s.documents.FindOwned(ctx, documentID, candidate.ID)
	if err != nil {
		return nil, notFoundOr(err, "document not found")
	}

	application, err := s.createOne(ctx, candidate, document, offerID)
	if err != nil {
		if refusal, ok := AsRefusal(err); ok && refusal.Reason == ReasonOfferNotFound {
			return nil, apperror.NotFound("offer not found")
		}
		return nil, err
	}
	return application, nil
}

// createOne is the only place an application row is written. The eligibility
// and cooldown checks run again inside the pair-locked transaction.
func (s *applicationService) createOne(ctx context.Context, candidate *models.User, document *models.Document, offerID uint) (*models.Application, error) {
	var created *models.Application

	err := s.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		applications := s.applications.WithTx(tx)

		if err := applications.LockPair(ctx, document.ID, offerID); err != nil {
			return err
		}

		offer, err := s.offers.WithTx(tx).FindByID(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &Refusal{Reason: ReasonOfferNotFound, Message: "Offer not found."}
			}
			return err
		}

		if refusal := s.eligibility.Evaluate(candidate, document, offer); refusal != nil {
			return refusal
		}

		refusal, err := s.cooldown.Check(ctx, applications, document, offer)
		if err != nil {
			return err
		}
		if refusal != nil {
			return refusal
		}

		now := s.clock.Now()
		application := &models.Application{
			DocumentID:  document.ID,
			OfferID:     offer.ID,
			CandidateID: candidate.ID,
			Status:      models.StatusSent,
			Snapshot:    BuildSnapshot(offer),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := applications.Create(ctx, application); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &Refusal{Reason: ReasonAlreadyApplied, Message: "Document already sent to this offer."}
			}
			return err
		}

		application.Offer = *offer
		application.Document = *document
		application.Candidate = *candidate
		created = application
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *applicationService) SubmitBulk(ctx context.Context, candidate *models.User, documentID uint, offerIDs []uint) (*BulkResult, error) {
	if candidate == nil || candidate.Role != models.RoleCandidate {
		return nil, apperror.Forbidden("only candidates can send applications")
	}
	if documentID == 0 {
		return nil, apperror.Validation("invalid bulk payload", map[string]string{"documentId": "required"})
	}

	ids := uniqueIDs(offerIDs)
	if len(ids) == 0 {
		return nil, apperror.Validation("invalid bulk payload", map[string]string{"offerIds": "at least one offer is required"})
	}
	if len(ids) > s.policy.BulkMaxOffers {
		return nil, apperror.Validation("invalid bulk payload", map[string]string{
			"offerIds": fmt.Sprintf("at most %d offers per request", s.policy.BulkMaxOffers),
		})
	}

	document, err := s.documents.FindOwned(ctx, documentID, candidate.ID)
	if err != nil {
		return nil, notFoundOr(err, "document not found")
	}

	eligible, err := s.offers.FindEligibleByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	outcomes := make(map[uint]bulkOutcome, len(ids))
	eligibleIDs := make(map[uint]bool, len(eligible))
	for _, offer := range eligible {
		eligibleIDs[offer.ID] = true
	}

	// Explain every requested offer the filtered read left out.
	var excluded []uint
	for _, id := range ids {
		if !eligibleIDs[id] {
			excluded = append(excluded, id)
		}
	}
	if len(excluded) > 0 {
		found, err := s.offers.FindByIDs(ctx, excluded)
		if err != nil {
			return nil, err
		}
		byID := make(map[uint]*models.Offer, len(found))
		for i := range found {
			byID[found[i].ID] = &found[i]
		}
		for _, id := range excluded {
			offer, ok := byID[id]
			if !ok {
				outcomes[id] = bulkOutcome{refusal: &Refusal{Reason: ReasonOfferNotFound, Message: "Offer not found."}}
				continue
			}
			if refusal := s.eligibility.EvaluateOffer(offer); refusal != nil {
				outcomes[id] = bulkOutcome{offer: offer, refusal: refusal}
				continue
			}
			// Opened between the two reads; let the transaction decide.
			eligible = append(eligible, *offer)
		}
	}

	result := &BulkResult{DocumentID: document.ID, OffersTotal: len(ids)}
	if len(eligible) == 0 {
		result.Message = "no valid offer in selection"
		result.Refused = collectRefused(ids, outcomes)
		return result, nil
	}

	parallelism := s.policy.BulkParallelism
	if parallelism <= 0 {
		parallelism = 1
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(parallelism)
	for i := range eligible {
		offer := &eligible[i]
		g.Go(func() error {
			outcome := bulkOutcome{offer: offer}
			application, err := s.createOne(ctx, candidate, document, offer.ID)
			switch refusal, isRefusal := AsRefusal(err); {
			case err == nil:
				outcome.application = application
			case isRefusal:
				outcome.refusal = refusal
			default:
				log.Printf("❌ Failed to create application for document %d and offer %d: %v\n", document.ID, offer.ID, err)
				outcome.refusal = &Refusal{Reason: ReasonStoreFailure, Message: "Application could not be saved."}
			}

			mu.Lock()
			outcomes[offer.ID] = outcome
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, id := range ids {
		if outcome, ok := outcomes[id]; ok && outcome.application != nil {
			result.Created = append(result.Created, outcome.application)
		}
	}
	result.Refused = collectRefused(ids, outcomes)

	log.Printf("📨 Bulk send for document %d: %d created, %d refused\n", document.ID, len(result.Created), len(result.Refused))
	return result, nil
}

type bulkOutcome struct {
	offer       *models.Offer
	application *models.Application
	refusal     *Refusal
}

// collectRefused keeps the request order.
func collectRefused(ids []uint, outcomes map[uint]bulkOutcome) []RefusedItem {
	refused := make([]RefusedItem, 0)
	for _, id := range ids {
		outcome, ok := outcomes[id]
		if !ok || outcome.refusal == nil {
			continue
		}
		refused = append(refused, RefusedItem{OfferID: id, Offer: outcome.offer, Refusal: outcome.refusal})
	}
	return refused
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}

var allowedTargets = map[models.ApplicationStatus]bool{
	models.StatusPending:  true,
	models.StatusAccepted: true,
	models.StatusRejected: true,
}

func (s *applicationService) SetStatus(ctx context.Context, actor *models.User, applicationID uint, status models.ApplicationStatus) (*models.Application, error) {
	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}

	if !s.ownsOffer(ctx, actor, &application.Offer) {
		return nil, apperror.Forbidden("only the company that owns the offer can change the status")
	}

	if !allowedTargets[status] {
		return nil, apperror.Validation("invalid status", map[string]string{
			"statut": "must be one of en_attente, accepte, refuse",
		})
	}
	if application.Status == status {
		return application, nil
	}
	if application.Status.Final() {
		return nil, apperror.Validation("application status is final", map[string]string{
			"statut": fmt.Sprintf("cannot change from %s", application.Status),
		})
	}

	now := s.clock.Now()
	if err := s.applications.UpdateStatus(ctx, application.ID, status, now); err != nil {
		return nil, err
	}
	application.Status = status
	application.UpdatedAt = now

	log.Printf("📝 Application %d moved to %s\n", application.ID, status)
	return application, nil
}

func (s *applicationService) ownsOffer(ctx context.Context, actor *models.User, offer *models.Offer) bool {
	if actor == nil || actor.Role != models.RoleCompany {
		return false
	}
	company, err := s.companies.FindByUserID(ctx, actor.ID)
	if err != nil {
		return false
	}
	return offer.CompanyID == company.ID
}

// canSee reports whether actor is the candidate or the company behind the application.
func (s *applicationService) canSee(ctx context.Context, actor *models.User, application *models.Application) bool {
	if actor == nil {
		return false
	}
	if actor.Role == models.RoleCandidate && application.CandidateID == actor.ID {
		return true
	}
	return s.ownsOffer(ctx, actor, &application.Offer)
}

func (s *applicationService) Get(ctx context.Context, actor *models.User, applicationID uint) (*models.Application, error) {
	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	if !s.canSee(ctx, actor, application) {
		return nil, apperror.Forbidden("you cannot access this application")
	}
	return application, nil
}

func (s *applicationService) List(ctx context.Context, actor *models.User) ([]models.Application, models.ApplicationStats, error) {
	var (
		applications []models.Application
		err          error
	)

	switch {
	case actor == nil:
		return nil, models.ApplicationStats{}, apperror.Forbidden("authentication required")
	case actor.Role == models.RoleCandidate:
		applications, err = s.applications.ListByCandidate(ctx, actor.ID)
	case actor.Role == models.RoleCompany:
		company, findErr := s.companies.FindByUserID(ctx, actor.ID)
		if findErr != nil {
			return nil, models.ApplicationStats{}, notFoundOr(findErr, "company profile not found")
		}
		applications, err = s.applications.ListByCompany(ctx, company.ID)
	default:
		return nil, models.ApplicationStats{}, apperror.Forbidden("guests have no applications")
	}
	if err != nil {
		return nil, models.ApplicationStats{}, err
	}

	return applications, ComputeStats(applications), nil
}

func ComputeStats(applications []models.Application) models.ApplicationStats {
	stats := models.ApplicationStats{Total: len(applications)}
	for _, application := range applications {
		switch application.Status {
		case models.StatusSent:
			stats.Sent++
		case models.StatusPending:
			stats.Pending++
		case models.StatusAccepted:
			stats.Accepted++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

func (s *applicationService) Delete(ctx context.Context, actor *models.User, applicationID uint) error {
	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return notFoundOr(err, "application not found")
	}
	if !s.canSee(ctx, actor, application) {
		return apperror.Forbidden("you cannot delete this application")
	}
	if err := s.applications.Delete(ctx, application.ID); err != nil {
		return notFoundOr(err, "application not found")
	}
	return nil
}

// notFoundOr maps a missing record to a not-found error and passes other errors through.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(message)
	}
	return err
}
