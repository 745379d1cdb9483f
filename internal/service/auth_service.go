package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oudaybenrhouma/ghalinino-api/internal/domain"
	"github.com/oudaybenrhouma/ghalinino-api/internal/repository"
	"github.com/oudaybenrhouma/ghalinino-api/pkg/errors"
)

// sessionTTL is how long a login token stays valid
const sessionTTL = 30 * 24 * time.Hour

// AuthService owns customer accounts and bearer-token sessions. Tokens are
// stored twice: a SHA-256 lookup column for the index scan and a bcrypt
// hash for the actual verification, so a leaked sessions table alone is
// not enough to forge a token.
type AuthService struct {
	customers repository.CustomerRepository
	sessions  repository.SessionRepository
	logger    *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(customers repository.CustomerRepository, sessions repository.SessionRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		customers: customers,
		sessions:  sessions,
		logger:    logger,
	}
}

// Register creates an account and signs it in. Wholesale registrations
// start pending and buy at retail until an admin approves them.
func (s *AuthService) Register(ctx context.Context, email, password, fullName, phone string, wantsWholesale bool) (*domain.Customer, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || fullName == "" {
		return nil, "", &errors.ErrValidation{
			Message: "email, password and full name are required",
			Fields:  map[string]string{"email": "required", "password": "required", "full_name": "required"},
		}
	}

	if existing, err := s.customers.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", &errors.ErrConflict{Message: "email already registered"}
	} else if err != nil {
		if _, isNotFound := err.(*errors.ErrNotFound); !isNotFound {
			return nil, "", err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	wholesale := domain.WholesaleProfile{Status: domain.WholesaleStatusNone}
	if wantsWholesale {
		wholesale.Status = domain.WholesaleStatusPending
	}

	customer := &domain.Customer{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Phone:        phone,
		Wholesale:    wholesale,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, "", err
	}

	token, err := s.createSession(ctx, customer.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.Bool("wholesale_requested", wantsWholesale))
	return customer, token, nil
}

// Login verifies credentials and opens a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Customer, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		if _, isNotFound := err.(*errors.ErrNotFound); isNotFound {
			return nil, "", &errors.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)) != nil {
		return nil, "", &errors.ErrUnauthorized{Message: "invalid credentials"}
	}

	token, err := s.createSession(ctx, customer.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Customer logged in", zap.String("customer_id", customer.ID.String()))
	return customer, token, nil
}

// Authenticate resolves a bearer token to its customer
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Customer, error) {
	session, err := s.lookupSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.customers.GetByID(ctx, session.CustomerID)
}

// Logout deletes the token's session. Unknown tokens are a silent no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.lookupSession(ctx, token)
	if err != nil {
		if _, isUnauthorized := err.(*errors.ErrUnauthorized); isUnauthorized {
			return nil
		}
		return err
	}
	return s.sessions.Delete(ctx, session.ID)
}

// PruneExpiredSessions deletes sessions past their expiry. Run periodically;
// expired tokens are already rejected at lookup, this just keeps the table
// from growing forever.
func (s *AuthService) PruneExpiredSessions(ctx context.Context) error {
	if err := s.sessions.DeleteExpired(ctx); err != nil {
		s.logger.Warn("Session prune failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *AuthService) createSession(ctx context.Context, customerID uuid.UUID) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash session token: %w", err)
	}

	session := &domain.Session{
		ID:          uuid.New(),
		CustomerID:  customerID,
		TokenHash:   string(hash),
		TokenLookup: tokenLookup(token),
		ExpiresAt:   time.Now().Add(sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) lookupSession(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.sessions.GetByTokenLookup(ctx, tokenLookup(token))
	if err != nil {
		if _, isNotFound := err.(*errors.ErrNotFound); isNotFound {
			return nil, &errors.ErrUnauthorized{Message: "invalid session"}
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, &errors.ErrUnauthorized{Message: "session expired"}
	}
	if bcrypt.CompareHashAndPassword([]byte(session.TokenHash), []byte(token)) != nil {
		return nil, &errors.ErrUnauthorized{Message: "invalid session"}
	}
	return session, nil
}

func tokenLookup(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
