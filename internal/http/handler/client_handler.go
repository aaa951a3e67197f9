package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-offers/internal/service"
)

// ClientHandler exposes client CRUD and the bulk import boundary.
type ClientHandler struct {
	Clients *service.ClientService
}

func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{Clients: clients}
}

func (h *ClientHandler) List(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	clients, err := h.Clients.List(c.Request.Context(), principal)
	if err != nil {
		WriteError(c, err)
		return
	}
	views := make([]service.ClientView, 0, len(clients))
	for _, client := range clients {
		views = append(views, service.NewClientView(client))
	}
	c.JSON(http.StatusOK, gin.H{"clients": views})
}

func (h *ClientHandler) Get(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	client, err := h.Clients.Get(c.Request.Context(), principal, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewClientView(client))
}

func (h *ClientHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var input service.ClientInput
	if !decodeMutation(c, &input) {
		return
	}
	created, err := h.Clients.Create(c.Request.Context(), principal, input)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.NewClientView(created))
}

func (h *ClientHandler) Update(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input service.ClientUpdateInput
	if !decodeMutation(c, &input) {
		return
	}
	updated, err := h.Clients.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewClientView(updated))
}

func (h *ClientHandler) Delete(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Clients.Delete(c.Request.Context(), principal, id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import accepts already-parsed rows from the CSV importer. Each row runs
// through the single-create path, so per-row failures are reported without
// aborting the batch.
func (h *ClientHandler) Import(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var rows []service.ClientInput
	if !decodeMutation(c, &rows) {
		return
	}
	outcome, err := h.Clients.BulkCreate(c.Request.Context(), principal, rows)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}
