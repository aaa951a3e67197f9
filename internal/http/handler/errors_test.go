package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/http/handler"
)

func TestWriteErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrMissingOrganization, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get offer: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrSlugConflict, http.StatusConflict},
		{domain.ErrAllowlistConflict, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.NewValidationError("title", "must not be empty"), http.StatusBadRequest},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		handler.WriteError(c, tc.err)
		require.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}
