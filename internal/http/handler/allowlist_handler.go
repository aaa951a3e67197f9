package handler

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-offers/internal/allowlist"
	"github.com/smallbiznis/valora-offers/internal/authz"
	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/service"
)

// AllowlistHandler manages the admin bootstrap allowlist and answers the
// identity provider's role provisioning calls.
type AllowlistHandler struct {
	Allowlist *allowlist.Service
	Node      *snowflake.Node
}

func NewAllowlistHandler(svc *allowlist.Service, node *snowflake.Node) *AllowlistHandler {
	return &AllowlistHandler{Allowlist: svc, Node: node}
}

func (h *AllowlistHandler) List(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	if err := authz.RequireAdmin(principal); err != nil {
		WriteError(c, err)
		return
	}
	entries, err := h.Allowlist.List(c.Request.Context(), principal.OrgID)
	if err != nil {
		WriteError(c, err)
		return
	}
	views := make([]service.AllowlistEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, service.NewAllowlistEntryView(entry))
	}
	c.JSON(http.StatusOK, gin.H{"entries": views})
}

type allowlistCreateRequest struct {
	Email string `json:"email"`
}

func (h *AllowlistHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	if err := authz.RequireAdmin(principal); err != nil {
		WriteError(c, err)
		return
	}
	var req allowlistCreateRequest
	if !decodeMutation(c, &req) {
		return
	}
	created, err := h.Allowlist.CreateEntry(c.Request.Context(), domain.AllowlistEntry{
		ID:        h.Node.Generate().Int64(),
		OrgID:     principal.OrgID,
		Email:     req.Email,
		CreatedBy: principal.Email,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.NewAllowlistEntryView(created))
}

type provisionRequest struct {
	Email string `json:"email"`
}

// ProvisionRole is the registration-time hook the identity provider calls:
// it answers which initial role a new user gets and consumes the allowlist
// entry when the answer is ADMIN.
func (h *AllowlistHandler) ProvisionRole(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	if err := authz.RequireAdmin(principal); err != nil {
		WriteError(c, err)
		return
	}
	var req provisionRequest
	if !decodeMutation(c, &req) {
		return
	}
	if req.Email == "" {
		badRequest(c, "email is required")
		return
	}

	role := h.Allowlist.AssignInitialRoleForNewUser(c.Request.Context(), req.Email, principal.OrgID)
	consumed := false
	if role == domain.RoleAdmin {
		consumed = h.Allowlist.MarkEmailAsUsedIfAdmin(c.Request.Context(), req.Email, principal.OrgID)
	}

	c.JSON(http.StatusOK, gin.H{
		"role":     role,
		"consumed": consumed,
	})
}
