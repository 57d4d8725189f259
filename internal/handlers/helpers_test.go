package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/ustagram/backend/internal/middleware"
	"github.com/anonto42/ustagram/backend/pkg/logger"
	"github.com/anonto42/ustagram/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var testLog = logger.Discard()

// newTestEcho returns an echo instance whose /api group authenticates every
// request as userID.
func newTestEcho(userID uint) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	g := e.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != 0 {
				c.Set(middleware.ContextUserIDKey, userID)
			}
			return next(c)
		}
	})
	return e, g
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]any](t, rec)
	msg, _ := body["message"].(string)
	return msg
}
