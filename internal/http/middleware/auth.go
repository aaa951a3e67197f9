package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/identity"
)

const principalKey = "principal"

// Session cookie fallback for browser clients; API clients send a bearer
// token.
const sessionCookieName = "valora_session"

// Auth resolves the session token into a Principal and attaches it to the
// request. Routes behind this middleware can assume a verified tenant.
type Auth struct {
	Resolver *identity.Resolver
}

// Authenticate rejects requests without a valid session.
func (m *Auth) Authenticate(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie(sessionCookieName); err == nil {
			token = cookie
		}
	}

	principal, err := m.Resolver.ResolveContext(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrMissingOrganization) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":             "missing_organization",
				"error_description": "Session has no organization and no default is configured.",
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":             "invalid_session",
			"error_description": "A valid session is required.",
		})
		return
	}

	c.Set(principalKey, principal)
	c.Next()
}

// GetPrincipal returns the resolved caller identity set by Authenticate.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	return principal, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
