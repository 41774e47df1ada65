package driving

import (
	"context"

	"github.com/custodia-labs/lexcore/internal/core/domain"
)

// AuthService exchanges API credentials for bearer tokens and verifies them.
type AuthService interface {
	// ExchangeAPIKey verifies the client's API key and mints a JWT.
	// Returns domain.ErrUnauthorized on bad credentials.
	ExchangeAPIKey(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error)

	// VerifyToken parses and validates a bearer token.
	VerifyToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}
