package handler

import (
	"net/http"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type PartnerHandler struct {
	svc service.PartnerService
}

func NewPartnerHandler(svc service.PartnerService) *PartnerHandler {
	return &PartnerHandler{svc: svc}
}

type registerPartnerRequest struct {
	ReferralCode string `json:"referralCode"`
}

func (h *PartnerHandler) Register(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req registerPartnerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	res, err := h.svc.Register(c.Request().Context(), uid, req.ReferralCode)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

type updateTypeRequest struct {
	Type string `json:"type" validate:"required,oneof=DTT DLHT"`
}

func (h *PartnerHandler) UpdateType(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req updateTypeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "type must be DTT or DLHT"))
	}
	p, err := h.svc.UpdateType(c.Request().Context(), uid, model.PartnerType(req.Type))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PartnerHandler) Details(c echo.Context) error {
	id := c.Param("id")
	details, err := h.svc.Details(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	if details == nil {
		details = []model.PartnerDetail{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"details": details})
}

type accrueRewardRequest struct {
	PartnerID string  `json:"partnerId" validate:"required"`
	Platform  string  `json:"platform" validate:"required"`
	Reward    float64 `json:"reward" validate:"required,gt=0"`
}

// AccrueReward is the admin surface the settlement process posts
// per-platform reward figures through.
func (h *PartnerHandler) AccrueReward(c echo.Context) error {
	var req accrueRewardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "partnerId, platform and a positive reward are required"))
	}
	if err := h.svc.AccrueReward(c.Request().Context(), req.PartnerID, req.Platform, req.Reward); err != nil {
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
