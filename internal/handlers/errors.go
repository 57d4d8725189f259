package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps domain errors onto status codes. Anything unrecognised is
// a storage or programming failure: it is logged and reported generically.
func toHTTPError(log *slog.Logger, err error) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, models.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		log.Error("request failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
