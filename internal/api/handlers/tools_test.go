package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/handlers"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
	"github.com/ndewijer/psx-portfolio-tracker/internal/testutil"
)

// TestToolsHandler_SIP tests the GET /api/tools/sip endpoint.
func TestToolsHandler_SIP(t *testing.T) {
	handler := handlers.NewToolsHandler(service.NewSIPService())

	t.Run("defaults give a one year projection of 1000 per month", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tools/sip", nil)
		w := httptest.NewRecorder()
		handler.SIP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var response model.SIPProjection
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response.Points) != 12 {
			t.Errorf("Expected 12 monthly points, got %d", len(response.Points))
		}
		if response.TotalInvested != 12000 {
			t.Errorf("Expected 12000 invested, got %v", response.TotalInvested)
		}
		if response.TotalValue <= response.TotalInvested {
			t.Errorf("Expected growth above %v, got %v", response.TotalInvested, response.TotalValue)
		}
	})

	t.Run("zero rate grows linearly", func(t *testing.T) {
		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/tools/sip",
			map[string]string{"amount": "500", "rate": "0", "years": "2"})
		w := httptest.NewRecorder()
		handler.SIP(w, req)

		var response model.SIPProjection
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.TotalValue != 12000 || len(response.Points) != 24 {
			t.Errorf("Expected 24 points ending at 12000, got %d ending at %v", len(response.Points), response.TotalValue)
		}
	})

	t.Run("invalid parameters return 400", func(t *testing.T) {
		cases := []map[string]string{
			{"amount": "-5"},
			{"rate": "150"},
			{"rate": "NaN"},
			{"years": "0"},
			{"years": "x"},
		}
		for _, params := range cases {
			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/tools/sip", params)
			w := httptest.NewRecorder()
			handler.SIP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("%v: expected status 400, got %d", params, w.Code)
			}
		}
	})
}
