// Package psx is a client for the Pakistan Stock Exchange data portal
// (dps.psx.com.pk): the symbol listing, intraday and end-of-day time series,
// and company report postings.
package psx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

const (
	// DefaultBaseURL is the public PSX data portal.
	DefaultBaseURL = "https://dps.psx.com.pk"

	// excludedSector is dropped from symbol listings; these are government
	// bills and bonds, not tradable equities.
	excludedSector = "BILLS AND BONDS"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Client defines the market data operations used by the services.
type Client interface {
	GetSymbols(ctx context.Context) ([]model.Symbol, error)
	GetIntraday(ctx context.Context, symbol string) ([]model.TimeSeriesPoint, error)
	GetEOD(ctx context.Context, symbol string) ([]model.TimeSeriesPoint, error)
	GetCompanyReports(ctx context.Context, symbol string) ([]model.CompanyReport, error)
}

// Options configures a RestClient.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	RateBurst int
}

// RestClient talks to the PSX data portal over HTTP.
// Every request waits on a shared rate limiter; there is no retry.
type RestClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// ensure RestClient implements the interface
var _ Client = (*RestClient)(nil)

// NewRestClient creates a PSX client from opts.
func NewRestClient(opts Options, log zerolog.Logger) *RestClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &RestClient{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		log:     log.With().Str("component", "psx").Logger(),
	}
}

// GetSymbols returns every listed symbol except bills and bonds.
func (c *RestClient) GetSymbols(ctx context.Context) ([]model.Symbol, error) {
	var raw []symbolResponse
	if err := c.getJSON(ctx, "/symbols", &raw); err != nil {
		return nil, err
	}

	symbols := make([]model.Symbol, 0, len(raw))
	for _, s := range raw {
		if s.SectorName == excludedSector {
			continue
		}
		symbols = append(symbols, model.Symbol{
			Symbol:     s.Symbol,
			Name:       s.Name,
			SectorName: s.SectorName,
			IsETF:      s.IsETF,
			IsDebt:     s.IsDebt,
		})
	}
	return symbols, nil
}

// GetIntraday returns today's ticks for symbol, oldest first.
func (c *RestClient) GetIntraday(ctx context.Context, symbol string) ([]model.TimeSeriesPoint, error) {
	return c.getTimeSeries(ctx, "/timeseries/int/", symbol)
}

// GetEOD returns the end-of-day closes for symbol over its whole history, oldest first.
func (c *RestClient) GetEOD(ctx context.Context, symbol string) ([]model.TimeSeriesPoint, error) {
	return c.getTimeSeries(ctx, "/timeseries/eod/", symbol)
}

// GetCompanyReports returns the report postings of symbol, most recent posting first.
func (c *RestClient) GetCompanyReports(ctx context.Context, symbol string) ([]model.CompanyReport, error) {
	var raw []reportResponse
	if err := c.getJSON(ctx, "/company/reports/"+url.PathEscape(symbol), &raw); err != nil {
		return nil, err
	}

	reports := make([]model.CompanyReport, 0, len(raw))
	for _, r := range raw {
		reports = append(reports, model.CompanyReport{
			ReportType:  r.ReportType,
			PeriodEnded: r.PeriodEnded,
			PostingDate: r.PostingDate,
		})
	}

	// YYYY-MM-DD sorts lexically
	slices.SortStableFunc(reports, func(a, b model.CompanyReport) int {
		return strings.Compare(b.PostingDate, a.PostingDate)
	})
	return reports, nil
}

func (c *RestClient) getTimeSeries(ctx context.Context, prefix, symbol string) ([]model.TimeSeriesPoint, error) {
	var raw timeSeriesResponse
	if err := c.getJSON(ctx, prefix+url.PathEscape(symbol), &raw); err != nil {
		return nil, err
	}
	return raw.toPoints(), nil
}

// getJSON performs a rate limited GET and decodes the body into out.
// The portal does not always label JSON responses, so decoding is done here
// instead of through resty's result binding.
func (c *RestClient) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.log.Debug().Str("path", path).Msg("Executing request")
	start := time.Now()

	resp, err := c.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", apperrors.ErrUpstream, path, err)
	}

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	if resp.IsError() {
		return fmt.Errorf("%w: GET %s: status %d", apperrors.ErrUpstream, path, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: GET %s: decode: %w", apperrors.ErrUpstream, path, err)
	}
	return nil
}
