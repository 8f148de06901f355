package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/psx-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
)

// MaxSymbolLimit caps the limit parameter of the symbols-with-timeseries listing.
const MaxSymbolLimit = 500

// MarketHandler serves PSX market data.
type MarketHandler struct {
	marketService *service.MarketService
	defaultLimit  int
}

// NewMarketHandler creates a new MarketHandler. defaultLimit applies when a
// symbols-with-timeseries request carries no limit.
func NewMarketHandler(marketService *service.MarketService, defaultLimit int) *MarketHandler {
	if defaultLimit < 1 || defaultLimit > MaxSymbolLimit {
		defaultLimit = MaxSymbolLimit
	}
	return &MarketHandler{
		marketService: marketService,
		defaultLimit:  defaultLimit,
	}
}

// Symbols handles GET requests for the listed symbols.
//
// Endpoint: GET /api/market/symbols
// Response: 200 OK with array of model.Symbol
// Error: 502 Bad Gateway if the listing cannot be fetched
func (h *MarketHandler) Symbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.marketService.GetSymbols(r.Context())
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveSymbols.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, symbols)
}

// SymbolsWithTimeSeries handles GET requests for listed symbols with their intraday series.
//
// Endpoint: GET /api/market/symbols/timeseries?limit=
// Response: 200 OK with array of model.SymbolWithTimeSeries
// Error: 400 Bad Request on an invalid limit
// Error: 502 Bad Gateway if the listing cannot be fetched
func (h *MarketHandler) SymbolsWithTimeSeries(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseLimit(r.URL.Query().Get("limit"), h.defaultLimit, MaxSymbolLimit)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	symbols, err := h.marketService.GetSymbolsWithTimeSeries(r.Context(), limit)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveSymbols.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, symbols)
}

// Indices handles GET requests for the KSE100, KSE30 and KMI30 intraday series.
//
// Endpoint: GET /api/market/indices
// Response: 200 OK with array of model.IndexTimeSeries
func (h *MarketHandler) Indices(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.marketService.GetIndexTimeSeries(r.Context()))
}

// Company handles GET requests for the listed name of a symbol.
//
// Endpoint: GET /api/market/{symbol}/company
// Response: 200 OK with model.CompanyInfo, name "Unknown Company" when not listed
// Error: 502 Bad Gateway if the listing cannot be fetched
func (h *MarketHandler) Company(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	info, err := h.marketService.GetCompanyName(r.Context(), symbol)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveSymbols.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, info)
}

// Intraday handles GET requests for today's series of a symbol.
// A failed fetch yields an empty array rather than an error.
//
// Endpoint: GET /api/market/{symbol}/intraday
// Response: 200 OK with array of model.TimeSeriesPoint
func (h *MarketHandler) Intraday(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	response.RespondJSON(w, http.StatusOK, h.marketService.GetDayData(r.Context(), symbol))
}

// Summary handles GET requests for the day summary of a symbol.
// A symbol without intraday data reports zeros.
//
// Endpoint: GET /api/market/{symbol}/summary
// Response: 200 OK with model.DaySummary
func (h *MarketHandler) Summary(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	response.RespondJSON(w, http.StatusOK, h.marketService.GetDaySummary(r.Context(), symbol))
}

// EOD handles GET requests for the end-of-day series of a symbol.
//
// Endpoint: GET /api/market/{symbol}/eod
// Response: 200 OK with array of model.TimeSeriesPoint
func (h *MarketHandler) EOD(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	response.RespondJSON(w, http.StatusOK, h.marketService.GetAllTimeData(r.Context(), symbol))
}

// Reports handles GET requests for the report postings of a company.
//
// Endpoint: GET /api/market/{symbol}/reports
// Response: 200 OK with array of model.CompanyReport, newest posting first
// Error: 502 Bad Gateway if the reports cannot be fetched
func (h *MarketHandler) Reports(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	reports, err := h.marketService.GetCompanyReports(r.Context(), symbol)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveReports.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, reports)
}

// Chart handles GET requests for a chart-ready series of a symbol.
//
// Endpoint: GET /api/market/{symbol}/chart?range=1D|1W|1M|6M|YTD|1Y|5Y|All&sma=
// Response: 200 OK with model.ChartSeries
// Error: 400 Bad Request on an invalid range or sma period
func (h *MarketHandler) Chart(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	q, err := request.ParseChartQuery(r.URL.Query().Get("range"), r.URL.Query().Get("sma"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	chart, err := h.marketService.GetChartSeries(r.Context(), symbol, q.Range, q.SMAPeriod)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTimeSeries.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, chart)
}
