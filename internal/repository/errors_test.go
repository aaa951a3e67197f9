package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

func TestMapErrorNoRows(t *testing.T) {
	require.ErrorIs(t, mapError("get client", pgx.ErrNoRows), domain.ErrNotFound)
}

func TestMapErrorUniqueViolations(t *testing.T) {
	slugErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: templateSlugConstraint}
	require.ErrorIs(t, mapError("create template", slugErr), domain.ErrSlugConflict)

	emailErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: allowlistEmailConstraint}
	require.ErrorIs(t, mapError("create allowlist entry", emailErr), domain.ErrAllowlistConflict)
}

func TestMapErrorForeignKeyCollapsesToNotFound(t *testing.T) {
	fkErr := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "offers_org_id_client_id_fkey"}
	require.ErrorIs(t, mapError("create offer", fkErr), domain.ErrNotFound)
}

func TestMapErrorPassthrough(t *testing.T) {
	cause := errors.New("connection refused")
	err := mapError("list offers", cause)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mapError("noop", nil))
}
