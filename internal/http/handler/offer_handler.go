package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/service"
)

// OfferHandler exposes offer CRUD, the status transition route, and PDF
// rendering.
type OfferHandler struct {
	Offers *service.OfferService
}

func NewOfferHandler(offers *service.OfferService) *OfferHandler {
	return &OfferHandler{Offers: offers}
}

func (h *OfferHandler) List(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	offers, err := h.Offers.List(c.Request.Context(), principal)
	if err != nil {
		WriteError(c, err)
		return
	}
	views := make([]service.OfferView, 0, len(offers))
	for _, offer := range offers {
		views = append(views, service.NewOfferView(offer))
	}
	c.JSON(http.StatusOK, gin.H{"offers": views})
}

func (h *OfferHandler) Get(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	offer, err := h.Offers.Get(c.Request.Context(), principal, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewOfferView(offer))
}

func (h *OfferHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var input service.OfferCreateInput
	if !decodeMutation(c, &input) {
		return
	}
	created, err := h.Offers.Create(c.Request.Context(), principal, input)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.NewOfferView(created))
}

func (h *OfferHandler) Update(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input service.OfferUpdateInput
	if !decodeMutation(c, &input) {
		return
	}
	updated, err := h.Offers.UpdateContent(c.Request.Context(), principal, id, input)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewOfferView(updated))
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *OfferHandler) Transition(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if !decodeMutation(c, &req) {
		return
	}
	target, known := domain.ParseOfferStatus(req.Status)
	if !known {
		badRequest(c, "unknown offer status")
		return
	}
	updated, err := h.Offers.Transition(c.Request.Context(), principal, id, target)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewOfferView(updated))
}

func (h *OfferHandler) Delete(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Offers.Delete(c.Request.Context(), principal, id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OfferHandler) RenderPDF(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pdf, err := h.Offers.RenderPDF(c.Request.Context(), principal, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", pdf)
}
