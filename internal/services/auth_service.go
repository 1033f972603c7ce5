// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/sales-ledger/internal/metrics"
	"github.com/javajoker/sales-ledger/internal/models"
	"github.com/javajoker/sales-ledger/internal/utils"
)

type AuthService struct {
	db      *gorm.DB
	tokens  *utils.TokenIssuer
	revoked *RevocationList
	metrics *metrics.StoreMetrics
	now     func() time.Time
}

type LoginRequest struct {
	Username string `json:"username" validate:"notblank,max=50"`
	Password string `json:"password" validate:"required"`
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenIssuer, m *metrics.StoreMetrics) *AuthService {
	return &AuthService{
		db:      db,
		tokens:  tokens,
		revoked: NewRevocationList(),
		metrics: m,
		now:     time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*models.LoginResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.ObserveLogin(metrics.OutcomeDenied)
			return nil, ErrInvalidCredentials
		}
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		s.metrics.ObserveLogin(metrics.OutcomeDenied)
		return nil, ErrInvalidCredentials
	}

	if user.Status == models.UserStatusSuspended {
		s.metrics.ObserveLogin(metrics.OutcomeDenied)
		return nil, ErrAccountSuspended
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("username", user.Username).Warn("Failed to record last login")
	}

	token, claims, err := s.tokens.GenerateJWT(user.ID, user.Username)
	if err != nil {
		s.metrics.ObserveLogin(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.metrics.ObserveLogin(metrics.OutcomeSuccess)
	return &models.LoginResult{
		User:      user.Info(),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate validates the token signature, expiry and revocation state.
func (s *AuthService) Authenticate(token string) (*utils.JWTClaims, error) {
	claims, err := s.tokens.ValidateJWT(token)
	if err != nil {
		return nil, err
	}
	if s.revoked.IsRevoked(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(claims *utils.JWTClaims) {
	if claims == nil || claims.ID == "" {
		return
	}
	until := s.now().Add(s.tokens.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	s.revoked.Revoke(claims.ID, until)
}

func (s *AuthService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
