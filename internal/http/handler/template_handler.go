package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-offers/internal/service"
)

// TemplateHandler exposes offer template CRUD.
type TemplateHandler struct {
	Templates *service.TemplateService
}

func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{Templates: templates}
}

func (h *TemplateHandler) List(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	templates, err := h.Templates.List(c.Request.Context(), principal)
	if err != nil {
		WriteError(c, err)
		return
	}
	views := make([]service.TemplateView, 0, len(templates))
	for _, template := range templates {
		views = append(views, service.NewTemplateView(template))
	}
	c.JSON(http.StatusOK, gin.H{"templates": views})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	template, err := h.Templates.Get(c.Request.Context(), principal, id)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewTemplateView(template))
}

func (h *TemplateHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var input service.TemplateInput
	if !decodeMutation(c, &input) {
		return
	}
	created, err := h.Templates.Create(c.Request.Context(), principal, input)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.NewTemplateView(created))
}

func (h *TemplateHandler) Update(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input service.TemplateUpdateInput
	if !decodeMutation(c, &input) {
		return
	}
	updated, err := h.Templates.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewTemplateView(updated))
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Templates.Delete(c.Request.Context(), principal, id); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
