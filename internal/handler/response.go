package handler

import (
	"errors"
	"net/http"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// serviceError maps service sentinel errors onto HTTP responses.
// Store failures become an opaque 500; the failing detail stays in the
// logs, not in the response body.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "User not found"))
	case errors.Is(err, service.ErrNotInChain):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "no commission relationship"))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "invalid credentials"))
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "email already registered"))
	case errors.Is(err, service.ErrAlreadyPartner):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "already a partner"))
	case errors.Is(err, service.ErrTypeCooldown):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "partner type change is on cooldown"))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "something went wrong"))
	}
}
