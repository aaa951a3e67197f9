package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/identity"
	"github.com/smallbiznis/valora-offers/internal/jwt"
)

func newTestResolver(t *testing.T, cache identity.SessionCache, cfg identity.Config) (*identity.Resolver, domain.SessionKey) {
	t.Helper()
	repo := &memoryKeyRepo{}
	manager := jwt.NewKeyManager(repo)
	key, err := manager.EnsureKey(context.Background(), 1)
	require.NoError(t, err)
	return identity.NewResolver(jwt.NewVerifier(manager), cache, cfg, zap.NewNop()), key
}

func signSession(t *testing.T, key domain.SessionKey, subject string, claims jwt.SessionClaims) string {
	t.Helper()
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: key.Secret},
		(&gojose.SignerOptions{}).WithType("JWT").WithHeader("kid", key.KID),
	)
	require.NoError(t, err)
	token, err := gojwt.Signed(signer).Claims(gojwt.Claims{
		Subject:  subject,
		IssuedAt: gojwt.NewNumericDate(time.Now()),
		Expiry:   gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).Claims(claims).Serialize()
	require.NoError(t, err)
	return token
}

func TestResolveContext(t *testing.T) {
	resolver, key := newTestResolver(t, nil, identity.Config{})

	token := signSession(t, key, "10", jwt.SessionClaims{OrgID: 1, Email: "User@Corp.Test", Role: "admin"})
	principal, err := resolver.ResolveContext(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(10), principal.UserID)
	require.Equal(t, int64(1), principal.OrgID)
	require.Equal(t, "user@corp.test", principal.Email)
	require.Equal(t, domain.RoleAdmin, principal.Role)
}

func TestResolveContextEmptyToken(t *testing.T) {
	resolver, _ := newTestResolver(t, nil, identity.Config{})

	_, err := resolver.ResolveContext(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolveContextGarbageToken(t *testing.T) {
	resolver, _ := newTestResolver(t, nil, identity.Config{})

	_, err := resolver.ResolveContext(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolveContextMissingOrg(t *testing.T) {
	resolver, key := newTestResolver(t, nil, identity.Config{})

	token := signSession(t, key, "10", jwt.SessionClaims{Role: "user"})
	_, err := resolver.ResolveContext(context.Background(), token)
	require.ErrorIs(t, err, domain.ErrMissingOrganization)
}

func TestResolveContextDefaultOrgFallback(t *testing.T) {
	resolver, key := newTestResolver(t, nil, identity.Config{DefaultOrgID: 1})

	token := signSession(t, key, "10", jwt.SessionClaims{Role: "user"})
	principal, err := resolver.ResolveContext(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(1), principal.OrgID)
	require.Equal(t, domain.RoleUser, principal.Role)
}

func TestResolveContextClampsUnknownRole(t *testing.T) {
	resolver, key := newTestResolver(t, nil, identity.Config{})

	token := signSession(t, key, "10", jwt.SessionClaims{OrgID: 1, Role: "superuser"})
	principal, err := resolver.ResolveContext(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, principal.Role)
}

func TestResolveContextRevokedSession(t *testing.T) {
	cache := newMemoryCache()
	resolver, key := newTestResolver(t, cache, identity.Config{CacheTTL: time.Minute})

	token := signSession(t, key, "10", jwt.SessionClaims{OrgID: 1, Role: "user"})
	_, err := resolver.ResolveContext(context.Background(), token)
	require.NoError(t, err)

	cache.revokeAll()
	_, err = resolver.ResolveContext(context.Background(), token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolveContextCaches(t *testing.T) {
	cache := newMemoryCache()
	resolver, key := newTestResolver(t, cache, identity.Config{CacheTTL: time.Minute})

	token := signSession(t, key, "10", jwt.SessionClaims{OrgID: 1, Role: "user"})
	_, err := resolver.ResolveContext(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, 1, len(cache.principals))

	_, err = resolver.ResolveContext(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, 1, cache.hits)
}

func TestResolveContextCacheErrorFallsBack(t *testing.T) {
	cache := newMemoryCache()
	cache.err = errors.New("redis down")
	resolver, key := newTestResolver(t, cache, identity.Config{CacheTTL: time.Minute})

	token := signSession(t, key, "10", jwt.SessionClaims{OrgID: 1, Role: "user"})
	principal, err := resolver.ResolveContext(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(10), principal.UserID)
}

type memoryKeyRepo struct {
	key domain.SessionKey
}

func (m *memoryKeyRepo) GetActiveKey(ctx context.Context, orgID int64) (domain.SessionKey, error) {
	if m.key.ID == 0 {
		return domain.SessionKey{}, domain.ErrNotFound
	}
	return m.key, nil
}

func (m *memoryKeyRepo) CreateKey(ctx context.Context, key domain.SessionKey) (domain.SessionKey, error) {
	key.ID = 1
	m.key = key
	return key, nil
}

type memoryCache struct {
	principals map[string]domain.Principal
	revoked    map[string]bool
	hits       int
	err        error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{principals: make(map[string]domain.Principal), revoked: make(map[string]bool)}
}

func (m *memoryCache) GetPrincipal(ctx context.Context, digest string) (*domain.Principal, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.principals[digest]; ok {
		m.hits++
		return &p, nil
	}
	return nil, nil
}

func (m *memoryCache) SetPrincipal(ctx context.Context, digest string, principal domain.Principal, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.principals[digest] = principal
	return nil
}

func (m *memoryCache) IsRevoked(ctx context.Context, digest string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.revoked[digest], nil
}

func (m *memoryCache) revokeAll() {
	for digest := range m.principals {
		m.revoked[digest] = true
	}
}
