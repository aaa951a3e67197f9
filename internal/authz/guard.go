// Package authz holds the role checks every service runs before touching a
// repository. Keeping them here, not in handlers, means the ordering
// guarantee (authorize before any read that could leak existence) does not
// depend on transport wiring.
package authz

import "github.com/smallbiznis/valora-offers/internal/domain"

// RequireSession ensures the principal was produced by session resolution.
func RequireSession(p domain.Principal) error {
	if p.UserID == 0 || p.OrgID == 0 {
		return domain.ErrUnauthenticated
	}
	return nil
}

// RequireAdmin ensures the principal holds the admin role.
func RequireAdmin(p domain.Principal) error {
	if err := RequireSession(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
