package handler

import (
	"net/http"
	"time"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type CommissionHandler struct {
	svc service.CommissionService
}

func NewCommissionHandler(svc service.CommissionService) *CommissionHandler {
	return &CommissionHandler{svc: svc}
}

type snapshotResponse struct {
	RecipientID          string               `json:"recipientId"`
	SourceID             string               `json:"sourceId"`
	Role                 model.CommissionRole `json:"role"`
	Rank                 model.PartnerRank    `json:"rank"`
	Depth                int                  `json:"depth"`
	ChainRootID          string               `json:"chainRootId"`
	YourCut              float64              `json:"yourCut"`
	CommissionPool       float64              `json:"commissionPool"`
	TradiFee             float64              `json:"tradiFee"`
	RemainingPool        float64              `json:"remainingPool"`
	TotalUplinerCount    int                  `json:"totalUplinerCount"`
	UplinerShare         float64              `json:"uplinerShare"`
	OwnKeep              float64              `json:"ownKeep"`
	TotalChainCommission float64              `json:"totalChainCommission"`
	SnapshotAt           string               `json:"snapshotAt"`
}

func (h *CommissionHandler) ListSnapshots(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing id"))
	}
	rows, err := h.svc.ListSnapshots(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]snapshotResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, snapshotResponse{
			RecipientID:          r.RecipientID,
			SourceID:             r.SourceID,
			Role:                 r.Role,
			Rank:                 r.Rank,
			Depth:                r.Depth,
			ChainRootID:          r.ChainRootID,
			YourCut:              r.YourCut,
			CommissionPool:       r.CommissionPool,
			TradiFee:             r.TradiFee,
			RemainingPool:        r.RemainingPool,
			TotalUplinerCount:    r.TotalUplinerCount,
			UplinerShare:         r.UplinerShare,
			OwnKeep:              r.OwnKeep,
			TotalChainCommission: r.TotalChainCommission,
			SnapshotAt:           r.SnapshotAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CommissionHandler) GetLive(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	source := c.QueryParam("source")
	if recipient == "" || source == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing recipient or source"))
	}
	b, err := h.svc.ComputeForRecipient(c.Request().Context(), recipient, source)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *CommissionHandler) Rebuild(c echo.Context) error {
	source := c.QueryParam("source")
	if source == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing source"))
	}
	n, err := h.svc.RebuildForSource(c.Request().Context(), source)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"rows": n})
}
