package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/psx-portfolio-tracker/internal/api/middleware"
	"github.com/ndewijer/psx-portfolio-tracker/internal/config"
	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
)

// Services bundles the services the router exposes.
type Services struct {
	System    *service.SystemService
	Portfolio *service.PortfolioService
	Trade     *service.TradeService
	Market    *service.MarketService
	SIP       *service.SIPService
}

// NewRouter creates and configures the HTTP router.
// Mutating routes require an API key and time token when cfg.Security.APIKey is set.
func NewRouter(svc Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// protect wraps mutating routes with the API key check when a key is configured.
	protect := func(r chi.Router) chi.Router {
		if cfg.Security.APIKey == "" {
			return r
		}
		return r.With(custommiddleware.APIKeyMiddleware(cfg.Security.APIKey))
	}

	systemHandler := handlers.NewSystemHandler(svc.System)
	portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio, svc.Trade)
	tradeHandler := handlers.NewTradeHandler(svc.Trade)
	marketHandler := handlers.NewMarketHandler(svc.Market, cfg.Prices.MarketSymbolLimit)
	toolsHandler := handlers.NewToolsHandler(svc.SIP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", portfolioHandler.Portfolios)
			protect(r).Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.Portfolio)
				protect(r).Put("/", portfolioHandler.UpdatePortfolio)
				protect(r).Delete("/", portfolioHandler.DeletePortfolio)
				r.Get("/valuation", portfolioHandler.Valuation)
				r.Get("/pnl-history", portfolioHandler.PnLHistory)
				r.Get("/net-worth", portfolioHandler.NetWorth)
				r.Get("/trades", portfolioHandler.Trades)
				protect(r).Post("/trades", portfolioHandler.CreateTrade)
			})
		})

		r.Route("/trade/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", tradeHandler.GetTrade)
			protect(r).Put("/", tradeHandler.UpdateTrade)
			protect(r).Delete("/", tradeHandler.DeleteTrade)
		})

		r.Route("/market", func(r chi.Router) {
			r.Get("/symbols", marketHandler.Symbols)
			r.Get("/symbols/timeseries", marketHandler.SymbolsWithTimeSeries)
			r.Get("/indices", marketHandler.Indices)

			r.Route("/{symbol}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateSymbolMiddleware)
				r.Get("/company", marketHandler.Company)
				r.Get("/intraday", marketHandler.Intraday)
				r.Get("/summary", marketHandler.Summary)
				r.Get("/eod", marketHandler.EOD)
				r.Get("/reports", marketHandler.Reports)
				r.Get("/chart", marketHandler.Chart)
			})
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/sip", toolsHandler.SIP)
		})
	})

	return r
}
