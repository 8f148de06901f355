package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api"
	"github.com/ndewijer/psx-portfolio-tracker/internal/config"
	"github.com/ndewijer/psx-portfolio-tracker/internal/database"
	"github.com/ndewijer/psx-portfolio-tracker/internal/logging"
	"github.com/ndewijer/psx-portfolio-tracker/internal/pricecache"
	"github.com/ndewijer/psx-portfolio-tracker/internal/psx"
	"github.com/ndewijer/psx-portfolio-tracker/internal/repository"
	"github.com/ndewijer/psx-portfolio-tracker/internal/scheduler"
	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
	"github.com/ndewijer/psx-portfolio-tracker/internal/valuation"
	"github.com/ndewijer/psx-portfolio-tracker/internal/version"
)

// app holds the HTTP server and the optional price refresh schedule.
type app struct {
	server  *http.Server
	sched   *scheduler.Scheduler
	refresh scheduler.Job
	log     zerolog.Logger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", false)
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)
	logging.SetGlobal(log)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	if err := database.Migrate(context.Background(), db, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	a, err := newApp(cfg, db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}
	a.start()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited")
}

// newApp wires repositories, the PSX client, price caches, services and the
// router on top of an open, migrated database.
func newApp(cfg *config.Config, db *sql.DB, log zerolog.Logger) (*app, error) {
	policy, err := valuation.ParseOversellPolicy(cfg.Portfolio.OversellPolicy)
	if err != nil {
		return nil, err
	}
	engine := valuation.New(policy)

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	priceRepo := repository.NewPriceRepository(db)

	client := psx.NewRestClient(psx.Options{
		BaseURL:   cfg.PSX.BaseURL,
		Timeout:   cfg.PSX.Timeout,
		RateLimit: cfg.PSX.RateLimit,
		RateBurst: cfg.PSX.RateBurst,
	}, log)

	intraday := pricecache.New(
		pricecache.FetcherFunc(client.GetIntraday),
		pricecache.WithTTL(cfg.Prices.CacheTTL),
		pricecache.WithConcurrency(cfg.Prices.FetchConcurrency),
		pricecache.WithStore(priceRepo),
		pricecache.WithLogger(log),
	)
	eod := pricecache.New(
		pricecache.FetcherFunc(client.GetEOD),
		pricecache.WithTTL(cfg.Prices.EODCacheTTL),
		pricecache.WithConcurrency(cfg.Prices.FetchConcurrency),
		pricecache.WithLogger(log),
	)
	log.Info().
		Dur("intraday_ttl", intraday.TTL()).
		Dur("eod_ttl", eod.TTL()).
		Msg("Price caches ready")

	// Create services
	services := api.Services{
		System: service.NewSystemService(db, map[string]bool{
			"api_key":            cfg.Security.APIKey != "",
			"price_refresh":      cfg.Prices.RefreshSchedule != "",
			"historical_pricing": true,
			"oversell_reject":    policy == valuation.OversellReject,
		}),
		Portfolio: service.NewPortfolioService(portfolioRepo, tradeRepo, engine, intraday, eod, log),
		Trade:     service.NewTradeService(db, tradeRepo, portfolioRepo, engine),
		Market:    service.NewMarketService(client, intraday, eod, cfg.Prices.FetchConcurrency, log),
		SIP:       service.NewSIPService(),
	}

	a := &app{log: log}

	// Background price refresh
	if cfg.Prices.RefreshSchedule != "" {
		refresh := service.NewPriceRefreshJob(tradeRepo, intraday, cfg.PSX.Timeout*4, log)
		a.refresh = scheduler.JobFunc{
			JobName: refresh.Name(),
			Fn: func(ctx context.Context) error {
				_, err := refresh.Run(ctx)
				return err
			},
		}
		a.sched = scheduler.New(log)
		if err := a.sched.AddJob(cfg.Prices.RefreshSchedule, a.refresh); err != nil {
			return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.Prices.RefreshSchedule, err)
		}
	}

	a.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(services, cfg, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

// start runs the scheduler, warms the price cache once and serves HTTP in
// the background.
func (a *app) start() {
	if a.sched != nil {
		a.sched.Start()
		go func() {
			if err := a.sched.RunNow(a.refresh); err != nil {
				a.log.Warn().Err(err).Msg("Initial price refresh failed")
			}
		}()
	}

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Str("version", version.Version).Msg("Starting server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
}

// shutdown stops the scheduler, then drains the HTTP server.
func (a *app) shutdown(ctx context.Context) error {
	if a.sched != nil {
		a.sched.Stop()
	}
	return a.server.Shutdown(ctx)
}
