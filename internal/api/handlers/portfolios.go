package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/psx-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
	"github.com/ndewijer/psx-portfolio-tracker/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests, including the
// derived valuation, P&L history and net worth views and the trades nested
// under a portfolio.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	tradeService     *service.TradeService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, tradeService *service.TradeService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		tradeService:     tradeService,
	}
}

// Portfolios handles GET requests to list portfolios.
//
// Endpoint: GET /api/portfolio?userId=
// Response: 200 OK with array of model.Portfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	filter := model.PortfolioFilter{UserID: r.URL.Query().Get("userId")}

	portfolios, err := h.portfolioService.GetPortfolios(r.Context(), filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePortfolios.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolios)
}

// Portfolio handles GET requests for a single portfolio with its trades.
//
// Endpoint: GET /api/portfolio/{uuid}
// Response: 200 OK with model.PortfolioWithTrades
// Error: 404 Not Found if the portfolio does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrievePortfolio.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// CreatePortfolio handles POST requests to create a portfolio.
//
// Endpoint: POST /api/portfolio
// Request: request.CreatePortfolioRequest
// Response: 201 Created with model.Portfolio
// Error: 400 Bad Request on malformed JSON or failed validation
// Error: 500 Internal Server Error if creation fails
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, portfolio)
}

// UpdatePortfolio handles PUT requests to change name, description or owner.
//
// Endpoint: PUT /api/portfolio/{uuid}
// Request: request.UpdatePortfolioRequest, absent fields are left unchanged
// Response: 200 OK with model.Portfolio
// Error: 400 Bad Request on malformed JSON or failed validation
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdatePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(r.Context(), portfolioID, req)
	if err != nil {
		respondServiceError(w, "failed to update portfolio", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio handles DELETE requests. Trades of the portfolio are removed with it.
//
// Endpoint: DELETE /api/portfolio/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	if err := h.portfolioService.DeletePortfolio(r.Context(), portfolioID); err != nil {
		respondServiceError(w, "failed to delete portfolio", err)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Valuation handles GET requests for the current valuation of a portfolio.
// Positions without any known price carry priceLoading and no currentPrice.
//
// Endpoint: GET /api/portfolio/{uuid}/valuation
// Response: 200 OK with model.PortfolioValuation
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if the ledger oversells under the reject policy
func (h *PortfolioHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	valuation, err := h.portfolioService.GetPortfolioValuation(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToGetValuation.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, valuation)
}

// PnLHistory handles GET requests for the running P&L of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/pnl-history?pricing=current|historical
// Response: 200 OK with model.PnLHistory
// Error: 400 Bad Request on an unknown pricing mode
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) PnLHistory(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	mode, err := request.ParsePricingMode(r.URL.Query().Get("pricing"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	history, err := h.portfolioService.GetPortfolioPnLHistory(r.Context(), portfolioID, mode)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToGetPnLHistory.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}

// NetWorth handles GET requests for the signed trade value of a portfolio.
//
// Endpoint: GET /api/portfolio/{uuid}/net-worth
// Response: 200 OK with model.NetWorth
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) NetWorth(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	netWorth, err := h.portfolioService.GetNetWorth(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, "failed to get net worth", err)
		return
	}

	response.RespondJSON(w, http.StatusOK, netWorth)
}

// Trades handles GET requests for the trades of a portfolio, newest first.
//
// Endpoint: GET /api/portfolio/{uuid}/trades
// Response: 200 OK with array of model.Trade
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Trades(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	trades, err := h.tradeService.GetTradesPerPortfolio(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTrades.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, trades)
}

// CreateTrade handles POST requests to record a trade in a portfolio.
//
// Endpoint: POST /api/portfolio/{uuid}/trades
// Request: request.CreateTradeRequest
// Response: 201 Created with model.Trade
// Error: 400 Bad Request on malformed JSON or failed validation
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if the trade oversells under the reject policy
func (h *PortfolioHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CreateTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.tradeService.CreateTrade(r.Context(), portfolioID, req)
	if err != nil {
		respondServiceError(w, "failed to create trade", err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, trade)
}
