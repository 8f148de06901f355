package handlers

import (
	"net/http"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/psx-portfolio-tracker/internal/api/response"
	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
)

// ToolsHandler serves stateless calculators.
type ToolsHandler struct {
	sipService *service.SIPService
}

// NewToolsHandler creates a new ToolsHandler
func NewToolsHandler(sipService *service.SIPService) *ToolsHandler {
	return &ToolsHandler{
		sipService: sipService,
	}
}

// SIP handles GET requests for a systematic investment plan projection.
//
// Endpoint: GET /api/tools/sip?amount=1000&rate=12&years=1
// Response: 200 OK with model.SIPProjection, one point per month
// Error: 400 Bad Request on invalid parameters
func (h *ToolsHandler) SIP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q, err := request.ParseSIPQuery(query.Get("amount"), query.Get("rate"), query.Get("years"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, h.sipService.Calculate(q.Amount, q.AnnualRate, q.Years))
}
