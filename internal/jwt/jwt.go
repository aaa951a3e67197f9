package jwt

import (
	"context"
	"fmt"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

// SessionClaims is the custom payload the identity provider places in
// session tokens. Role arrives as free-form metadata and is clamped to the
// typed enum by the identity resolver, not here.
type SessionClaims struct {
	OrgID int64  `json:"org_id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verifier checks session tokens against per-org keys. Issuance belongs to
// the identity provider; this service only verifies.
type Verifier struct {
	keys *KeyManager
}

// NewVerifier constructs a session token verifier.
func NewVerifier(manager *KeyManager) *Verifier {
	return &Verifier{keys: manager}
}

// allowed signature algorithms for session tokens.
var allowedAlgorithms = []gojose.SignatureAlgorithm{gojose.HS256}

// VerifySessionToken parses and verifies a session token. The org hint is
// read from unverified claims only to select the verification key; nothing
// from the token is trusted before the signature check passes. A token
// without an org falls back to fallbackOrgID when one is configured.
func (v *Verifier) VerifySessionToken(ctx context.Context, token string, fallbackOrgID int64) (*gojwt.Claims, *SessionClaims, error) {
	parsed, err := gojwt.ParseSigned(token, allowedAlgorithms)
	if err != nil {
		return nil, nil, fmt.Errorf("parse token: %w", err)
	}

	var hint SessionClaims
	if err := parsed.UnsafeClaimsWithoutVerification(&hint); err != nil {
		return nil, nil, fmt.Errorf("read org hint: %w", err)
	}
	keyOrgID := hint.OrgID
	if keyOrgID == 0 {
		if fallbackOrgID == 0 {
			return nil, nil, domain.ErrMissingOrganization
		}
		keyOrgID = fallbackOrgID
	}

	key, err := v.keys.ActiveKey(ctx, keyOrgID)
	if err != nil {
		return nil, nil, fmt.Errorf("load key: %w", err)
	}

	var std gojwt.Claims
	var custom SessionClaims
	if err := parsed.Claims(key.Secret, &std, &custom); err != nil {
		return nil, nil, fmt.Errorf("verify token: %w", err)
	}

	if err := std.Validate(gojwt.Expected{}); err != nil {
		return nil, nil, fmt.Errorf("validate claims: %w", err)
	}

	return &std, &custom, nil
}
