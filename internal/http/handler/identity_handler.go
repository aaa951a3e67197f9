package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// IdentityHandler echoes the resolved session identity.
type IdentityHandler struct{}

func NewIdentityHandler() *IdentityHandler {
	return &IdentityHandler{}
}

// Me returns the principal the auth middleware resolved for this request.
func (h *IdentityHandler) Me(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, principal)
}

// Health is the unauthenticated liveness probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
