package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/repositories"
	"talentbridge/recruiting-api/internal/security"
)

const minPasswordLength = 8

type AccountService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

type accountService struct {
	transactor repositories.Transactor
	users      repositories.UserRepository
	companies  repositories.CompanyRepository
	tokens     *security.JWTProvider
	clock      Clock
}

func NewAccountService(
	transactor repositories.Transactor,
	users repositories.UserRepository,
	companies repositories.CompanyRepository,
	tokens *security.JWTProvider,
	clock Clock,
) AccountService {
	return &accountService{
		transactor: transactor,
		users:      users,
		companies:  companies,
		tokens:     tokens,
		clock:      clock,
	}
}

func validateRegistration(req models.RegisterRequest) map[string]string {
	fields := map[string]string{}

	if len(strings.TrimSpace(req.Username)) < 3 {
		fields["username"] = "must contain at least 3 characters"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil || req.Email == "" {
		fields["email"] = "invalid email address"
	}
	if !req.Role.Valid() {
		fields["type"] = "must be one of invite, candidat, entreprise"
	}
	if req.Phone != "" {
		digits := 0
		for _, r := range req.Phone {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits < 9 || digits > 15 {
			fields["telephone"] = "must contain between 9 and 15 digits"
		}
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("must contain at least %d characters", minPasswordLength)
	} else if req.Password != req.PasswordConfirm {
		fields["password_confirm"] = "passwords do not match"
	}

	return fields
}

// Register creates the user and, for company accounts, the company profile
// in the same transaction.
func (s *accountService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if fields := validateRegistration(req); len(fields) > 0 {
		return nil, apperror.Validation("invalid registration", fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
	}

	err = s.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		if user.Role == models.RoleCompany {
			return s.createCompanyProfile(ctx, s.companies.WithTx(tx), user)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(apperror.CodeConflict, "username or email already used", err)
		}
		return nil, err
	}

	log.Printf("👤 Registered %s account %q\n", user.Role, user.Username)
	return user, nil
}

// Company profiles start closed to applications.
func (s *accountService) createCompanyProfile(ctx context.Context, companies repositories.CompanyRepository, user *models.User) error {
	company := &models.Company{
		UserID:                user.ID,
		Name:                  user.Username,
		AcceptingApplications: false,
	}
	return companies.Create(ctx, company)
}

func (s *accountService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	invalid := apperror.New(apperror.CodeUnauthorized, "invalid username or password", nil)

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, string(user.Role), s.clock.Now())
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}

	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

func (s *accountService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return user, nil
}
