package authenticator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/curaious/taskdesk/internal/config"
	"github.com/curaious/taskdesk/internal/rbac"
)

const issuer = "taskdesk"

var (
	ErrMissingSecret = errors.New("JWT_SECRET is required")
	ErrTokenRevoked  = errors.New("token has been revoked")
	ErrInvalidToken  = errors.New("invalid token")
)

// UserClaims is the payload of an access token.
type UserClaims struct {
	jwt.RegisteredClaims
	TenantID string    `json:"tenantId,omitempty"`
	Role     rbac.Role `json:"role"`
}

// UserID is the subject of the token.
func (c *UserClaims) UserID() string {
	return c.Subject
}

type Authenticator struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
}

func New(conf *config.Config, revoked RevocationStore) (*Authenticator, error) {
	if conf.JWT_SECRET == "" {
		return nil, ErrMissingSecret
	}
	ttl := time.Duration(conf.JWT_TTL_HOURS) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}

	return &Authenticator{
		secret:  []byte(conf.JWT_SECRET),
		ttl:     ttl,
		revoked: revoked,
	}, nil
}

// TTL is how long issued tokens stay valid.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// GenerateToken signs an HS256 access token for p.
func (a *Authenticator) GenerateToken(p rbac.Principal) (string, error) {
	now := time.Now().UTC()
	claims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		TenantID: p.TenantID,
		Role:     p.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken parses token, checks its signature and expiry, and
// rejects tokens revoked by logout.
func (a *Authenticator) VerifyAccessToken(ctx context.Context, token string) (*UserClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*UserClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Revoke blocks the token identified by claims until it would have expired anyway.
func (a *Authenticator) Revoke(ctx context.Context, claims *UserClaims) error {
	until := time.Now().Add(a.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return a.revoked.Revoke(ctx, claims.ID, until)
}
