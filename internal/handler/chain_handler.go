package handler

import (
	"net/http"
	"strconv"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ChainHandler struct {
	svc service.ChainService
}

func NewChainHandler(svc service.ChainService) *ChainHandler {
	return &ChainHandler{svc: svc}
}

type chainMemberResponse struct {
	UserID      string            `json:"userId"`
	Email       string            `json:"email"`
	PartnerRank model.PartnerRank `json:"partnerRank"`
}

type chainResponse struct {
	UserID           string                `json:"userId"`
	Depth            int                   `json:"depth"`
	DirectReferrerID string                `json:"directReferrerId"`
	Chain            []chainMemberResponse `json:"chain"`
	ChainLength      int                   `json:"chainLength"`
}

func (h *ChainHandler) Get(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing id"))
	}
	chain, err := h.svc.ResolveChain(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	resp := chainResponse{
		UserID:           chain.UserID,
		Depth:            chain.Depth,
		DirectReferrerID: chain.DirectReferrerID,
		Chain:            make([]chainMemberResponse, 0, chain.Length()),
		ChainLength:      chain.Length(),
	}
	for _, m := range chain.Members {
		resp.Chain = append(resp.Chain, chainMemberResponse{UserID: m.UserID, Email: m.Email, PartnerRank: m.Rank})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ChainHandler) GetDownline(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing id"))
	}
	depth, _ := strconv.Atoi(c.QueryParam("depth"))
	levels, err := h.svc.ResolveDownline(c.Request().Context(), id, depth)
	if err != nil {
		return serviceError(c, err)
	}
	if levels == nil {
		levels = []service.DownlineLevel{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"levels": levels})
}
