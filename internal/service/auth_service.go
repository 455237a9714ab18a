package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

// AuthConfig defines configuration for token validation and minting.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
	// DevTokenMint enables the local token mint. Production deployments
	// attest identity upstream and leave this off.
	DevTokenMint bool
}

// AuthService validates bearer tokens and, in development, mints them. The
// token only carries a coarse role used for route gating; every mutating
// operation re-checks the actor against the in-ledger access registry.
type AuthService struct {
	logger *zap.Logger
	clock  Clock
	config AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(logger *zap.Logger, clock Clock, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = UTCClock
	}
	return &AuthService{logger: logger, clock: clock, config: config}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// MintToken issues a signed token for the given account and role. Only
// available when the dev mint is enabled.
func (s *AuthService) MintToken(account string, role models.ActorRole) (string, time.Time, error) {
	if !s.config.DevTokenMint {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrNotSupported, "token minting is disabled")
	}
	if account == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "account is required")
	}
	switch role {
	case models.RoleRoot, models.RoleRegistrar, models.RoleCitizen:
	default:
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	issuedAt := s.clock()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.JWTClaims{
		Account: account,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   account,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, expiresAt, nil
}
