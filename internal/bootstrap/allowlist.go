package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/config"
	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/jwt"
	"github.com/smallbiznis/valora-offers/internal/password"
	"github.com/smallbiznis/valora-offers/internal/repository"
)

// SeedAllowlist provisions the first admin allowlist entries for the default
// org at process start.
func SeedAllowlist(lc fx.Lifecycle, cfg config.Config, entries repository.AllowlistRepository, keys *jwt.KeyManager, node *snowflake.Node, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return Seed(ctx, cfg, entries, keys, node, logger)
		},
	})
}

// Seed ensures the default org has an active session verification key and
// that every configured bootstrap email holds an allowlist entry. This is the
// only path that can grant the admin role without an existing admin; it reads
// config only, never request input. Re-running is a no-op for entries that
// already exist.
func Seed(ctx context.Context, cfg config.Config, entries repository.AllowlistRepository, keys *jwt.KeyManager, node *snowflake.Node, logger *zap.Logger) error {
	if _, err := keys.EnsureKey(ctx, cfg.DefaultOrgID); err != nil {
		return fmt.Errorf("bootstrap session key: %w", err)
	}

	for _, raw := range cfg.BootstrapAdminEmails {
		email := domain.NormalizeEmail(raw)
		if email == "" {
			continue
		}

		_, err := entries.Create(ctx, domain.AllowlistEntry{
			ID:        node.Generate().Int64(),
			OrgID:     cfg.DefaultOrgID,
			Email:     email,
			CreatedBy: "bootstrap",
		})
		if errors.Is(err, domain.ErrAllowlistConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("bootstrap allowlist entry: %w", err)
		}

		logger.Info("audit",
			zap.String("event", "allowlist.bootstrap"),
			zap.Int64("org_id", cfg.DefaultOrgID),
			zap.String("email", email),
		)
	}

	// The initial credential, when configured, is hashed here and the encoded
	// hash is emitted for the external identity provider to import out of
	// band. The plaintext never leaves this function and no request path in
	// this service reads credentials.
	if cfg.BootstrapPassword != "" {
		hashed, err := password.Hash(cfg.BootstrapPassword)
		if err != nil {
			return fmt.Errorf("bootstrap hash password: %w", err)
		}
		logger.Info("audit",
			zap.String("event", "bootstrap.credential"),
			zap.Int64("org_id", cfg.DefaultOrgID),
			zap.String("password_hash", hashed),
		)
	}

	return nil
}
