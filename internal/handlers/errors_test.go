package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("title: %w", models.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("post x: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("comment 1: %w", models.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("email taken: %w", models.ErrConflict), http.StatusConflict},
		{echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var he *echo.HTTPError
		require.True(t, errors.As(toHTTPError(testLog, tc.err), &he), tc.err)
		assert.Equal(t, tc.status, he.Code, tc.err)
	}

	var he *echo.HTTPError
	require.True(t, errors.As(toHTTPError(testLog, errors.New("secret dsn")), &he))
	assert.Equal(t, "Internal server error", he.Message)
}
