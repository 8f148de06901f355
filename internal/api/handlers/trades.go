package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/psx-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
	"github.com/ndewijer/psx-portfolio-tracker/internal/validation"
)

// TradeHandler handles HTTP requests for single trades.
// Listing and creating trades live under the portfolio routes.
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependency.
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// GetTrade handles GET requests to retrieve a single trade.
//
// Endpoint: GET /api/trade/{uuid}
// Response: 200 OK with model.Trade
// Error: 404 Not Found if the trade does not exist
func (h *TradeHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	trade, err := h.tradeService.GetTrade(r.Context(), tradeID)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTrade.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// UpdateTrade handles PUT requests to change a trade.
//
// Endpoint: PUT /api/trade/{uuid}
// Request: request.UpdateTradeRequest, absent fields are left unchanged
// Response: 200 OK with model.Trade
// Error: 400 Bad Request on malformed JSON or failed validation
// Error: 404 Not Found if the trade does not exist
// Error: 409 Conflict if the change oversells under the reject policy
func (h *TradeHandler) UpdateTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.tradeService.UpdateTrade(r.Context(), tradeID, req)
	if err != nil {
		respondServiceError(w, "failed to update trade", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// DeleteTrade handles DELETE requests to remove a trade.
//
// Endpoint: DELETE /api/trade/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the trade does not exist
// Error: 409 Conflict if removing a buy oversells under the reject policy
func (h *TradeHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	if err := h.tradeService.DeleteTrade(r.Context(), tradeID); err != nil {
		respondServiceError(w, "failed to delete trade", err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
