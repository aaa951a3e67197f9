// Package allowlist decides which emails may bootstrap into the admin role.
// It is the only code path that grants ADMIN at account-creation time.
package allowlist

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/repository"
)

// Service performs allowlist lookups and role assignment. All lookups fail
// closed: a storage error is treated as "not allowed", never as allowed.
type Service struct {
	entries repository.AllowlistRepository
	logger  *zap.Logger
}

// NewService wires the allowlist service.
func NewService(entries repository.AllowlistRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.L()
	}
	return &Service{entries: entries, logger: logger}
}

// IsEmailAllowedForAdmin reports whether the normalized email has an
// allowlist entry in the org.
func (s *Service) IsEmailAllowedForAdmin(ctx context.Context, email string, orgID int64) bool {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return false
	}

	_, err := s.entries.GetByEmail(ctx, orgID, normalized)
	if err == nil {
		return true
	}
	if !errors.Is(err, domain.ErrNotFound) {
		// Fail closed on lookup failure.
		s.logger.Error("allowlist lookup failed, denying admin",
			zap.Int64("org_id", orgID),
			zap.Error(err),
		)
	}
	return false
}

// AssignInitialRoleForNewUser returns the role a freshly registered user
// receives: ADMIN iff the email is allowlisted at call time, else USER.
func (s *Service) AssignInitialRoleForNewUser(ctx context.Context, email string, orgID int64) domain.Role {
	if s.IsEmailAllowedForAdmin(ctx, email, orgID) {
		s.logger.Info("audit",
			zap.String("event", "allowlist.admin_granted"),
			zap.Int64("org_id", orgID),
			zap.String("email", domain.NormalizeEmail(email)),
		)
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// MarkEmailAsUsedIfAdmin records consumption of an allowlist entry. It is
// idempotent: once used_at is set, further calls return false without error.
func (s *Service) MarkEmailAsUsedIfAdmin(ctx context.Context, email string, orgID int64) bool {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return false
	}

	marked, err := s.entries.MarkUsed(ctx, orgID, normalized)
	if err != nil {
		s.logger.Error("allowlist mark-used failed",
			zap.Int64("org_id", orgID),
			zap.Error(err),
		)
		return false
	}
	if marked {
		s.logger.Info("audit",
			zap.String("event", "allowlist.entry_used"),
			zap.Int64("org_id", orgID),
			zap.String("email", normalized),
		)
	}
	return marked
}

// List returns the org's allowlist entries, newest last.
func (s *Service) List(ctx context.Context, orgID int64) ([]domain.AllowlistEntry, error) {
	return s.entries.List(ctx, orgID)
}

// CreateEntry adds an allowlist entry on behalf of an existing admin (or the
// bootstrap path). The email is normalized before insert.
func (s *Service) CreateEntry(ctx context.Context, entry domain.AllowlistEntry) (domain.AllowlistEntry, error) {
	entry.Email = domain.NormalizeEmail(entry.Email)
	if entry.Email == "" {
		return domain.AllowlistEntry{}, domain.NewValidationError("email", "must not be empty")
	}

	created, err := s.entries.Create(ctx, entry)
	if err != nil {
		return domain.AllowlistEntry{}, err
	}
	s.logger.Info("audit",
		zap.String("event", "allowlist.entry_created"),
		zap.Int64("org_id", created.OrgID),
		zap.String("email", created.Email),
		zap.String("created_by", created.CreatedBy),
	)
	return created, nil
}
