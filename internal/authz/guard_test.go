package authz_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-offers/internal/authz"
	"github.com/smallbiznis/valora-offers/internal/domain"
)

func TestRequireSession(t *testing.T) {
	require.ErrorIs(t, authz.RequireSession(domain.Principal{}), domain.ErrUnauthenticated)
	require.ErrorIs(t, authz.RequireSession(domain.Principal{UserID: 1}), domain.ErrUnauthenticated)
	require.ErrorIs(t, authz.RequireSession(domain.Principal{OrgID: 1}), domain.ErrUnauthenticated)
	require.NoError(t, authz.RequireSession(domain.Principal{UserID: 1, OrgID: 1, Role: domain.RoleUser}))
}

func TestRequireAdmin(t *testing.T) {
	require.ErrorIs(t, authz.RequireAdmin(domain.Principal{}), domain.ErrUnauthenticated)
	require.ErrorIs(t, authz.RequireAdmin(domain.Principal{UserID: 1, OrgID: 1, Role: domain.RoleUser}), domain.ErrForbidden)
	require.NoError(t, authz.RequireAdmin(domain.Principal{UserID: 1, OrgID: 1, Role: domain.RoleAdmin}))
}
