package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smallbiznis/valora-offers/internal/bootstrap"
	"github.com/smallbiznis/valora-offers/internal/config"
	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/jwt"
	"github.com/smallbiznis/valora-offers/internal/password"
)

func newSeedFixture(t *testing.T) (*memoryAllowlistRepo, *jwt.KeyManager, *snowflake.Node) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return newMemoryAllowlistRepo(), jwt.NewKeyManager(&memoryKeyRepo{}), node
}

func TestSeedCreatesEntriesAndKey(t *testing.T) {
	entries, keys, node := newSeedFixture(t)
	cfg := config.Config{
		DefaultOrgID:         7,
		BootstrapAdminEmails: []string{" Admin@Example.com ", "ops@corp.test", ""},
	}

	require.NoError(t, bootstrap.Seed(context.Background(), cfg, entries, keys, node, zap.NewNop()))

	listed, err := entries.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "admin@example.com", listed[0].Email)
	require.Equal(t, "bootstrap", listed[0].CreatedBy)

	key, err := keys.ActiveKey(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, key.Secret, 64)
}

func TestSeedIsIdempotent(t *testing.T) {
	entries, keys, node := newSeedFixture(t)
	cfg := config.Config{
		DefaultOrgID:         7,
		BootstrapAdminEmails: []string{"admin@example.com"},
	}

	require.NoError(t, bootstrap.Seed(context.Background(), cfg, entries, keys, node, zap.NewNop()))
	require.NoError(t, bootstrap.Seed(context.Background(), cfg, entries, keys, node, zap.NewNop()))

	listed, err := entries.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestSeedEmitsVerifiableCredentialHash(t *testing.T) {
	entries, keys, node := newSeedFixture(t)
	core, logs := observer.New(zap.InfoLevel)
	cfg := config.Config{
		DefaultOrgID:      7,
		BootstrapPassword: "correct horse battery staple",
	}

	require.NoError(t, bootstrap.Seed(context.Background(), cfg, entries, keys, node, zap.New(core)))

	var hash string
	for _, entry := range logs.All() {
		fields := entry.ContextMap()
		if fields["event"] == "bootstrap.credential" {
			hash, _ = fields["password_hash"].(string)
		}
	}
	require.NotEmpty(t, hash)

	ok, err := password.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = password.Verify("wrong password", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

type allowKey struct {
	orgID int64
	email string
}

type memoryAllowlistRepo struct {
	entries map[allowKey]domain.AllowlistEntry
	order   []allowKey
}

func newMemoryAllowlistRepo() *memoryAllowlistRepo {
	return &memoryAllowlistRepo{entries: make(map[allowKey]domain.AllowlistEntry)}
}

func (r *memoryAllowlistRepo) List(_ context.Context, orgID int64) ([]domain.AllowlistEntry, error) {
	var out []domain.AllowlistEntry
	for _, key := range r.order {
		if key.orgID == orgID {
			out = append(out, r.entries[key])
		}
	}
	return out, nil
}

func (r *memoryAllowlistRepo) GetByEmail(_ context.Context, orgID int64, email string) (domain.AllowlistEntry, error) {
	entry, ok := r.entries[allowKey{orgID: orgID, email: email}]
	if !ok {
		return domain.AllowlistEntry{}, domain.ErrNotFound
	}
	return entry, nil
}

func (r *memoryAllowlistRepo) Create(_ context.Context, entry domain.AllowlistEntry) (domain.AllowlistEntry, error) {
	key := allowKey{orgID: entry.OrgID, email: entry.Email}
	if _, exists := r.entries[key]; exists {
		return domain.AllowlistEntry{}, domain.ErrAllowlistConflict
	}
	r.entries[key] = entry
	r.order = append(r.order, key)
	return entry, nil
}

func (r *memoryAllowlistRepo) MarkUsed(_ context.Context, orgID int64, email string) (bool, error) {
	key := allowKey{orgID: orgID, email: email}
	entry, ok := r.entries[key]
	if !ok || entry.UsedAt != nil {
		return false, nil
	}
	now := time.Now()
	entry.UsedAt = &now
	r.entries[key] = entry
	return true, nil
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
