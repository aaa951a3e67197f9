// Package identity resolves an authenticated session into a Principal. The
// org id is taken exclusively from server-verified session claims, never from
// request bodies or query parameters.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/jwt"
)

// Config carries the resolver's startup configuration. The default org is an
// explicit value handed in here; business logic never reads it from the
// environment.
type Config struct {
	DefaultOrgID int64
	CacheTTL     time.Duration
}

// SessionCache caches resolved principals and tracks revoked sessions, keyed
// by token digest. Implementations are best-effort; a miss or error falls
// back to full verification.
type SessionCache interface {
	GetPrincipal(ctx context.Context, digest string) (*domain.Principal, error)
	SetPrincipal(ctx context.Context, digest string, principal domain.Principal, ttl time.Duration) error
	IsRevoked(ctx context.Context, digest string) (bool, error)
}

// Resolver turns session tokens into principals.
type Resolver struct {
	verifier *jwt.Verifier
	cache    SessionCache
	cfg      Config
	logger   *zap.Logger
}

// NewResolver creates an identity resolver.
func NewResolver(verifier *jwt.Verifier, cache SessionCache, cfg Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.L()
	}
	return &Resolver{verifier: verifier, cache: cache, cfg: cfg, logger: logger}
}

// ResolveContext verifies the session token and produces the caller's
// principal. Fails with ErrUnauthenticated for absent/invalid tokens and
// ErrMissingOrganization when no org can be determined.
func (r *Resolver) ResolveContext(ctx context.Context, sessionToken string) (domain.Principal, error) {
	token := strings.TrimSpace(sessionToken)
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	digest := tokenDigest(token)

	if revoked, err := r.isRevoked(ctx, digest); err == nil && revoked {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	if principal := r.cached(ctx, digest); principal != nil {
		return *principal, nil
	}

	std, claims, err := r.verifier.VerifySessionToken(ctx, token, r.cfg.DefaultOrgID)
	if err != nil {
		if errors.Is(err, domain.ErrMissingOrganization) {
			return domain.Principal{}, domain.ErrMissingOrganization
		}
		r.logger.Debug("session verification failed", zap.Error(err))
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil || userID == 0 {
		r.logger.Warn("session subject is not a user id", zap.String("sub", std.Subject))
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	orgID := claims.OrgID
	if orgID == 0 {
		orgID = r.cfg.DefaultOrgID
		r.logger.Warn("session missing org, using configured default",
			zap.Int64("user_id", userID),
			zap.Int64("default_org_id", orgID),
		)
	}
	if orgID == 0 {
		return domain.Principal{}, domain.ErrMissingOrganization
	}

	role, known := domain.ParseRole(claims.Role)
	if !known {
		// Unknown role metadata is clamped down, never propagated.
		r.logger.Warn("unknown session role clamped to USER",
			zap.Int64("org_id", orgID),
			zap.Int64("user_id", userID),
			zap.String("role", claims.Role),
		)
	}

	principal := domain.Principal{
		UserID: userID,
		OrgID:  orgID,
		Email:  domain.NormalizeEmail(claims.Email),
		Role:   role,
	}

	if r.cache != nil && r.cfg.CacheTTL > 0 {
		if err := r.cache.SetPrincipal(ctx, digest, principal, r.cfg.CacheTTL); err != nil {
			r.logger.Debug("principal cache write failed", zap.Error(err))
		}
	}

	return principal, nil
}

func (r *Resolver) isRevoked(ctx context.Context, digest string) (bool, error) {
	if r.cache == nil {
		return false, nil
	}
	revoked, err := r.cache.IsRevoked(ctx, digest)
	if err != nil {
		r.logger.Warn("revocation lookup failed", zap.Error(err))
		return false, err
	}
	return revoked, nil
}

func (r *Resolver) cached(ctx context.Context, digest string) *domain.Principal {
	if r.cache == nil {
		return nil
	}
	principal, err := r.cache.GetPrincipal(ctx, digest)
	if err != nil {
		r.logger.Debug("principal cache read failed", zap.Error(err))
		return nil
	}
	return principal
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
