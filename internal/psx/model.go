package psx

import (
	"encoding/json"
	"slices"

	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// timeSeriesResponse is the raw payload of the /timeseries endpoints.
// Each row of Data is [unix seconds, price, volume].
type timeSeriesResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    [][]json.Number `json:"data"`
}

// symbolResponse is one entry of the /symbols listing.
type symbolResponse struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	SectorName string `json:"sectorName"`
	IsETF      bool   `json:"isETF"`
	IsDebt     bool   `json:"isDebt"`
}

// reportResponse is one entry of the /company/reports listing.
type reportResponse struct {
	ReportType  string `json:"report_type"`
	PeriodEnded string `json:"period_ended"`
	PostingDate string `json:"posting_date"`
}

// toPoints converts raw rows into points sorted by timestamp ascending.
// Rows with fewer than two columns or unparsable numbers are skipped;
// a missing volume is read as 0.
func (r timeSeriesResponse) toPoints() []model.TimeSeriesPoint {
	points := make([]model.TimeSeriesPoint, 0, len(r.Data))
	for _, row := range r.Data {
		if len(row) < 2 {
			continue
		}
		ts, err := row[0].Float64()
		if err != nil {
			continue
		}
		price, err := row[1].Float64()
		if err != nil {
			continue
		}
		var volume float64
		if len(row) > 2 {
			volume, _ = row[2].Float64()
		}
		points = append(points, model.TimeSeriesPoint{
			Timestamp: int64(ts),
			Price:     price,
			Volume:    volume,
		})
	}

	slices.SortStableFunc(points, func(a, b model.TimeSeriesPoint) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return points
}
