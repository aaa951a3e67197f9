package jwt

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/repository"
)

// KeyManager loads per-org session verification keys and can mint one for an
// org that has none yet (the bootstrap path shares it with the identity
// provider out of band).
type KeyManager struct {
	repo repository.SessionKeyRepository
}

// NewKeyManager creates a KeyManager.
func NewKeyManager(repo repository.SessionKeyRepository) *KeyManager {
	return &KeyManager{repo: repo}
}

// ActiveKey retrieves the org's active verification key.
func (m *KeyManager) ActiveKey(ctx context.Context, orgID int64) (domain.SessionKey, error) {
	key, err := m.repo.GetActiveKey(ctx, orgID)
	if err != nil {
		return domain.SessionKey{}, fmt.Errorf("active key: %w", err)
	}
	return key, nil
}

// EnsureKey returns the active key or creates a new HS256 key if missing.
func (m *KeyManager) EnsureKey(ctx context.Context, orgID int64) (domain.SessionKey, error) {
	key, err := m.repo.GetActiveKey(ctx, orgID)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.SessionKey{}, fmt.Errorf("ensure key: %w", err)
	}

	secret := make([]byte, 64)
	if _, randErr := rand.Read(secret); randErr != nil {
		return domain.SessionKey{}, fmt.Errorf("generate secret: %w", randErr)
	}

	key = domain.SessionKey{
		OrgID:     orgID,
		KID:       uuid.NewString(),
		Secret:    secret,
		Algorithm: string(jose.HS256),
		IsActive:  true,
	}

	created, err := m.repo.CreateKey(ctx, key)
	if err != nil {
		return domain.SessionKey{}, fmt.Errorf("persist key: %w", err)
	}

	return created, nil
}
