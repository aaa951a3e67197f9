package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

const (
	templateSlugConstraint   = "templates_org_id_slug_key"
	allowlistEmailConstraint = "admin_allowlist_org_id_email_key"
)

// mapError converts driver-level errors into the domain taxonomy. Anything
// unmapped is wrapped with the operation name and propagated.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case templateSlugConstraint:
				return domain.ErrSlugConflict
			case allowlistEmailConstraint:
				return domain.ErrAllowlistConflict
			}
		case pgerrcode.ForeignKeyViolation:
			// Offer referencing a client outside the org (or a deleted one)
			// is indistinguishable from the client not existing.
			return domain.ErrNotFound
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
