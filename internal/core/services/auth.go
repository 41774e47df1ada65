package services

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
	"github.com/custodia-labs/lexcore/internal/core/ports/driving"
)

// Ensure AuthService implements the driving port
var _ driving.AuthService = (*AuthService)(nil)

const defaultTokenTTL = time.Hour

// AuthServiceConfig configures the single-tenant API key exchange.
// APIKeyHash is a bcrypt hash of the accepted key.
type AuthServiceConfig struct {
	Auth       driven.AuthAdapter
	ClientID   string
	APIKeyHash string
	TokenTTL   time.Duration
	Logger     *slog.Logger
}

// AuthService exchanges a configured API key for a short-lived JWT.
type AuthService struct {
	auth       driven.AuthAdapter
	clientID   string
	apiKeyHash string
	tokenTTL   time.Duration
	logger     *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &AuthService{
		auth:       cfg.Auth,
		clientID:   cfg.ClientID,
		apiKeyHash: cfg.APIKeyHash,
		tokenTTL:   cfg.TokenTTL,
		logger:     cfg.Logger,
	}
}

func (s *AuthService) ExchangeAPIKey(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error) {
	if s.apiKeyHash == "" {
		s.logger.Warn("token exchange attempted but no API key is configured")
		return nil, domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(req.ClientID), []byte(s.clientID)) != 1 {
		return nil, domain.ErrUnauthorized
	}
	if !s.auth.VerifyAPIKey(req.APIKey, s.apiKeyHash) {
		s.logger.Warn("token exchange rejected", "client_id", req.ClientID)
		return nil, domain.ErrUnauthorized
	}

	now := time.Now()
	expires := now.Add(s.tokenTTL)
	token, err := s.auth.GenerateToken(&domain.TokenClaims{
		Subject:   req.ClientID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenResponse{Token: token, ExpiresAt: expires}, nil
}

func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.auth.ParseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if time.Now().Unix() >= claims.ExpiresAt {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
