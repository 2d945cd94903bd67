package handler

import (
	"net/http"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/broker"
	"github.com/labstack/echo/v4"
)

type BrokerHandler struct {
	client *broker.Client
}

func NewBrokerHandler(client *broker.Client) *BrokerHandler {
	return &BrokerHandler{client: client}
}

// Proxy forwards GET requests under /broker/* to the upstream
// affiliate API and relays status and JSON body untouched.
func (h *BrokerHandler) Proxy(c echo.Context) error {
	if !h.client.Enabled() {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "broker proxy not configured"))
	}
	body, status, err := h.client.Get(c.Request().Context(), c.Param("*"), c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadGateway, NewErrorResponse("bad_gateway", "broker upstream unavailable"))
	}
	return c.JSONBlob(status, body)
}
