package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-offers/internal/domain"
)

// WriteError is the single place domain errors become HTTP responses. A row
// the caller's org does not own surfaces here as a plain 404; the response
// never reveals whether the row exists elsewhere.
func WriteError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrMissingOrganization):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthenticated",
			"error_description": "A valid session is required.",
		})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":             "forbidden",
			"error_description": "The session role does not permit this operation.",
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":             "not_found",
			"error_description": "Resource not found.",
		})
	case errors.Is(err, domain.ErrSlugConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":             "slug_conflict",
			"error_description": "A template with this slug already exists.",
		})
	case errors.Is(err, domain.ErrAllowlistConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":             "allowlist_conflict",
			"error_description": "An allowlist entry for this email already exists.",
		})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error":             "invalid_transition",
			"error_description": "The offer status does not permit this change.",
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "validation_failed",
			"error_description": validation.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "internal_error",
			"error_description": "Something went wrong.",
		})
	}
}

func badRequest(c *gin.Context, description string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":             "invalid_request",
		"error_description": description,
	})
}
