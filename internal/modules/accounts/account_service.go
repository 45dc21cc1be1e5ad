package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delivery-marketplace/internal/models"
	emailSvc "delivery-marketplace/pkg/email"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 30 * 24 * time.Hour

// ServiceInterface defines methods for account business logic.
type ServiceInterface interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, customerID string) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
}

// CartDropper forgets a customer's cart.
type CartDropper interface {
	Drop(customerID string)
}

// CheckoutDiscarder forgets a customer's checkout session.
type CheckoutDiscarder interface {
	Discard(ctx context.Context, customerID string) error
}

type Service struct {
	repo            RepositoryInterface
	carts           CartDropper
	checkout        CheckoutDiscarder
	emailer         emailSvc.Sender
	templateManager *emailSvc.TemplateManager
	jwtSecret       string
	logger          *zap.Logger
	now             func() time.Time
}

func NewService(
	repo RepositoryInterface,
	carts CartDropper,
	checkout CheckoutDiscarder,
	emailer emailSvc.Sender,
	tm *emailSvc.TemplateManager,
	jwtSecret string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:            repo,
		carts:           carts,
		checkout:        checkout,
		emailer:         emailer,
		templateManager: tm,
		jwtSecret:       jwtSecret,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Signup.FindByEmail: %w", err)
	}
	if err == nil {
		return nil, models.ErrConflict
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.HashPassword: %w", err)
	}

	created, err := s.repo.Create(ctx, &models.Account{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
		IsVendor:     req.IsVendor,
		IsRider:      req.IsRider,
		IsChef:       req.IsChef,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Signup.Create: %w", err)
	}

	s.sendWelcome(ctx, created)
	return s.generateAuthResponse(created)
}

// sendWelcome never fails the signup.
func (s *Service) sendWelcome(ctx context.Context, account *models.Account) {
	if s.emailer == nil || s.templateManager == nil {
		return
	}
	html, err := s.templateManager.GenerateWelcomeEmailHTML(emailSvc.TemplateData{Name: account.Name})
	if err != nil {
		s.logger.Error("Failed to generate welcome email", zap.Error(err))
		return
	}
	plain := fmt.Sprintf("Karibu, %s! Your account is ready.", account.Name)
	if err := s.emailer.SendEmail(ctx, account.Email, "Welcome", plain, html); err != nil {
		s.logger.Warn("Welcome email not sent", zap.String("accountID", account.ID), zap.Error(err))
	}
}

func (s *Service) generateAuthResponse(account *models.Account) (*models.AuthResponse, error) {
	claims := &models.JwtCustomClaims{
		UserID:   account.ID,
		Email:    account.Email,
		IsVendor: account.IsVendor,
		IsRider:  account.IsRider,
		IsChef:   account.IsChef,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(s.now().Add(tokenLifetime)),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := accessToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	account.PasswordHash = ""
	return &models.AuthResponse{
		AccessToken: signed,
		Account:     account,
	}, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	account, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service.Login.FindByEmail: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.generateAuthResponse(account)
}

// Logout drops the customer's cart and checkout session. Tokens are
// stateless and simply expire.
func (s *Service) Logout(ctx context.Context, customerID string) error {
	if s.carts != nil {
		s.carts.Drop(customerID)
	}
	if s.checkout != nil {
		if err := s.checkout.Discard(ctx, customerID); err != nil {
			return fmt.Errorf("service.Logout: %w", err)
		}
	}
	s.logger.Info("Customer logged out", zap.String("customerID", customerID))
	return nil
}

func (s *Service) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.GetAccount: %w", err)
	}
	return account, nil
}
