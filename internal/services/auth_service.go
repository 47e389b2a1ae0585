package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/models"
)

// UserStore is the persistence surface the auth service needs
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// TokenClaims are the identity-provider claims the core consumes. Role is
// deliberately absent: it is always read from the users table so an admin
// role change takes effect without re-issuing tokens.
type TokenClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	jwt.RegisteredClaims
}

// AuthService resolves bearer credentials to user records
type AuthService struct {
	users     UserStore
	jwtSecret []byte
	logger    *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, jwtSecret string, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// ResolveToken verifies the bearer token and returns the matching user.
// A valid token whose subject has never been seen provisions a customer
// account on first authenticated contact.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("token carries no email for provisioning")
	}

	user = &models.User{
		ID:        claims.Subject,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Role:      models.RoleCustomer,
		Active:    true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("Provisioned user on first authenticated contact")

	return user, nil
}
