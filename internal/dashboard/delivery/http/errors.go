package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"market-dashboard/internal/dashboard/dto"
	"market-dashboard/internal/dashboard/repository"
	"market-dashboard/internal/dashboard/service"
	"market-dashboard/pkg/logger"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, repository.ErrCoinNotFound),
		errors.Is(err, repository.ErrStockNotFound),
		errors.Is(err, service.ErrUnknownAsset),
		errors.Is(err, service.ErrNotInWatchlist):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidAssetKind),
		errors.Is(err, service.ErrInvalidTargetYear),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrEmptyCredential):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
}

// respondError maps a service error to its status. Unexpected errors are logged and
// answered with a generic message.
func respondError(c echo.Context, log *logger.Logger, msg string, err error) error {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.ErrorContext(c.Request().Context(), msg, logger.ErrorField(err))
		return c.JSON(status, dto.ErrorResponse{Error: msg})
	}
	return c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
