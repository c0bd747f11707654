package services

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/config"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
)

// IndexQueue receives offers whose searchable content changed.
type IndexQueue interface {
	EnqueueOffer(offerID uint)
}

type OfferService interface {
	Create(ctx context.Context, actor *models.User, req models.OfferRequest) (*models.Offer, error)
	Update(ctx context.Context, actor *models.User, id uint, req models.OfferRequest) (*models.Offer, error)
	ToggleAccepting(ctx context.Context, actor *models.User, id uint) (*models.Offer, error)
	Archive(ctx context.Context, actor *models.User, id uint) (*models.Offer, error)
	Get(ctx context.Context, actor *models.User, id uint) (*models.Offer, error)
	ListPublic(ctx context.Context, filter models.OfferFilter) ([]models.Offer, error)
	ListMine(ctx context.Context, actor *models.User) ([]models.Offer, error)
}

type offerService struct {
	offers    repositories.OfferRepository
	companies repositories.CompanyRepository
	index     IndexQueue
	policy    config.PolicyConfig
}

// NewOfferService accepts a nil index when matching is disabled.
func NewOfferService(
	offers repositories.OfferRepository,
	companies repositories.CompanyRepository,
	index IndexQueue,
	policy config.PolicyConfig,
) OfferService {
	return &offerService{
		offers:    offers,
		companies: companies,
		index:     index,
		policy:    policy,
	}
}

func (s *offerService) companyOf(ctx context.Context, actor *models.User) (*models.Company, error) {
	if actor == nil || actor.Role != models.RoleCompany {
		return nil, apperror.Forbidden("only companies can manage offers")
	}
	company, err := s.companies.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "company profile not found")
	}
	return company, nil
}

// ownedOffer loads an offer and checks it belongs to actor's company.
func (s *offerService) ownedOffer(ctx context.Context, actor *models.User, id uint) (*models.Offer, error) {
	company, err := s.companyOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	offer, err := s.offers.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "offer not found")
	}
	if offer.CompanyID != company.ID {
		return nil, apperror.Forbidden("this offer belongs to another company")
	}
	return offer, nil
}

func (s *offerService) Create(ctx context.Context, actor *models.User, req models.OfferRequest) (*models.Offer, error) {
	company, err := s.companyOf(ctx, actor)
	if err != nil {
		return nil, err
	}

	offer := &models.Offer{
		CompanyID:             company.ID,
		CooldownDays:          s.policy.DefaultCooldownDays,
		AcceptingApplications: true,
		Published:             false,
		Tags:                  datatypes.JSON("[]"),
	}
	if err := applyOfferRequest(offer, req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(offer.Title) == "" {
		return nil, apperror.Validation("invalid offer", map[string]string{"titre": "required"})
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}
	offer.Company = *company
	s.reindex(offer.ID)
	return offer, nil
}

func (s *offerService) Update(ctx context.Context, actor *models.User, id uint, req models.OfferRequest) (*models.Offer, error) {
	offer, err := s.ownedOffer(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyOfferRequest(offer, req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(offer.Title) == "" {
		return nil, apperror.Validation("invalid offer", map[string]string{"titre": "required"})
	}

	if err := s.offers.Save(ctx, offer); err != nil {
		return nil, err
	}
	s.reindex(offer.ID)
	return offer, nil
}

func (s *offerService) ToggleAccepting(ctx context.Context, actor *models.User, id uint) (*models.Offer, error) {
	offer, err := s.ownedOffer(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	offer.AcceptingApplications = !offer.AcceptingApplications
	if err := s.offers.Save(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// Archive hides the offer; existing applications keep their snapshot.
func (s *offerService) Archive(ctx context.Context, actor *models.User, id uint) (*models.Offer, error) {
	offer, err := s.ownedOffer(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if offer.Archived {
		return offer, nil
	}
	offer.Archived = true
	if err := s.offers.Save(ctx, offer); err != nil {
		return nil, err
	}
	s.reindex(offer.ID)
	return offer, nil
}

// Get shows published offers to everyone and any offer to its owner.
func (s *offerService) Get(ctx context.Context, actor *models.User, id uint) (*models.Offer, error) {
	offer, err := s.offers.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "offer not found")
	}
	if offer.Published && !offer.Archived {
		return offer, nil
	}
	if actor != nil && actor.Role == models.RoleCompany && offer.Company.UserID == actor.ID {
		return offer, nil
	}
	return nil, apperror.NotFound("offer not found")
}

func (s *offerService) ListPublic(ctx context.Context, filter models.OfferFilter) ([]models.Offer, error) {
	return s.offers.ListPublic(ctx, filter)
}

func (s *offerService) ListMine(ctx context.Context, actor *models.User) ([]models.Offer, error) {
	company, err := s.companyOf(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.offers.ListByCompany(ctx, company.ID)
}

func (s *offerService) reindex(offerID uint) {
	if s.index != nil {
		s.index.EnqueueOffer(offerID)
	}
}

func applyOfferRequest(offer *models.Offer, req models.OfferRequest) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&offer.Title, req.Title)
	setString(&offer.Position, req.Position)
	setString(&offer.Domain, req.Domain)
	setString(&offer.Specialty, req.Specialty)
	setString(&offer.Level, req.Level)
	setString(&offer.ContractType, req.ContractType)
	setString(&offer.WorkMode, req.WorkMode)
	setString(&offer.City, req.City)
	setString(&offer.Country, req.Country)
	setString(&offer.Description, req.Description)

	if req.SalaryMin != nil {
		offer.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		offer.SalaryMax = req.SalaryMax
	}
	if req.ExperienceMin != nil {
		offer.ExperienceMin = req.ExperienceMin
	}
	if req.ExperienceMax != nil {
		offer.ExperienceMax = req.ExperienceMax
	}
	if req.AcceptingApplications != nil {
		offer.AcceptingApplications = *req.AcceptingApplications
	}
	if req.Published != nil {
		offer.Published = *req.Published
	}
	if req.Deadline != nil {
		offer.Deadline = req.Deadline
	}

	fields := map[string]string{}
	if req.CooldownDays != nil {
		if *req.CooldownDays < 0 {
			fields["relance_days"] = "must not be negative"
		} else {
			offer.CooldownDays = *req.CooldownDays
		}
	}
	if offer.SalaryMin != nil && offer.SalaryMax != nil && *offer.SalaryMin > *offer.SalaryMax {
		fields["salaire_min"] = "cannot exceed salaire_max"
	}
	if offer.ExperienceMin != nil && offer.ExperienceMax != nil && *offer.ExperienceMin > *offer.ExperienceMax {
		fields["experience_min"] = "cannot exceed experience_max"
	}
	if req.Tags != nil {
		tags, err := json.Marshal(req.Tags)
		if err != nil {
			fields["tags"] = "invalid tags"
		} else {
			offer.Tags = datatypes.JSON(tags)
		}
	}

	if len(fields) > 0 {
		return apperror.Validation("invalid offer", fields)
	}
	return nil
}
