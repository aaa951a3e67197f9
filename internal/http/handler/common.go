package handler

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/http/middleware"
	"github.com/smallbiznis/valora-offers/internal/service"
)

const maxBodyBytes = 1 << 20

// currentPrincipal fetches the identity the auth middleware resolved. A miss
// means the route was wired without the middleware; treat it as no session.
func currentPrincipal(c *gin.Context) (domain.Principal, bool) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		WriteError(c, domain.ErrUnauthenticated)
	}
	return principal, ok
}

// decodeMutation reads a mutation payload, rejects org override fields before
// decoding, and unmarshals into dst.
func decodeMutation(c *gin.Context, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		badRequest(c, "unable to read request body")
		return false
	}
	if err := service.CheckNoOrgOverride(body); err != nil {
		WriteError(c, err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		badRequest(c, "malformed JSON body")
		return false
	}
	return true
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
