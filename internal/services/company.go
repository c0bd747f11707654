package services

import (
	"context"
	"log"
	"strings"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
)

type CompanyService interface {
	GetMine(ctx context.Context, actor *models.User) (*models.Company, error)
	UpdateMine(ctx context.Context, actor *models.User, req models.CompanyRequest) (*models.Company, error)
	ToggleAccepting(ctx context.Context, actor *models.User) (*models.Company, error)
	GetByID(ctx context.Context, id uint) (*models.Company, error)
}

type companyService struct {
	companies repositories.CompanyRepository
}

func NewCompanyService(companies repositories.CompanyRepository) CompanyService {
	return &companyService{companies: companies}
}

func (s *companyService) GetMine(ctx context.Context, actor *models.User) (*models.Company, error) {
	if actor == nil || actor.Role != models.RoleCompany {
		return nil, apperror.Forbidden("only company accounts have a company profile")
	}
	company, err := s.companies.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundOr(err, "company profile not found")
	}
	return company, nil
}

func (s *companyService) UpdateMine(ctx context.Context, actor *models.User, req models.CompanyRequest) (*models.Company, error) {
	company, err := s.GetMine(ctx, actor)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 {
			return nil, apperror.Validation("invalid company profile", map[string]string{
				"nomEntreprise": "must contain at least 2 characters",
			})
		}
		company.Name = name
	}
	if req.Sector != nil {
		company.Sector = strings.TrimSpace(*req.Sector)
	}
	if req.City != nil {
		company.City = strings.TrimSpace(*req.City)
	}
	if req.Country != nil {
		company.Country = strings.TrimSpace(*req.Country)
	}

	if err := s.companies.Save(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) ToggleAccepting(ctx context.Context, actor *models.User) (*models.Company, error) {
	company, err := s.GetMine(ctx, actor)
	if err != nil {
		return nil, err
	}

	company.AcceptingApplications = !company.AcceptingApplications
	if err := s.companies.Save(ctx, company); err != nil {
		return nil, err
	}

	log.Printf("🔀 Company %d accepting applications: %t\n", company.ID, company.AcceptingApplications)
	return company, nil
}

func (s *companyService) GetByID(ctx context.Context, id uint) (*models.Company, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "company not found")
	}
	return company, nil
}
