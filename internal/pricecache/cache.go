// Package pricecache keeps recently fetched price series in memory and falls
// back through progressively older sources when a fresh price is unavailable.
//
// Lookup order for a symbol is: fresh in-memory entry, realtime fetch, expired
// in-memory entry, last known persisted price. Anything served from one of the
// last two tiers is reported as stale.
package pricecache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

const (
	// DefaultTTL is how long a fetched series counts as fresh.
	DefaultTTL = 24 * time.Hour
	// DefaultConcurrency bounds parallel fetches in Snapshot and Refresh.
	DefaultConcurrency = 5
)

// Fetcher retrieves the current price series of a symbol.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) ([]model.TimeSeriesPoint, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, symbol string) ([]model.TimeSeriesPoint, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, symbol string) ([]model.TimeSeriesPoint, error) {
	return f(ctx, symbol)
}

// LastKnownStore persists the most recent price of each symbol so a value
// survives restarts and upstream outages.
type LastKnownStore interface {
	SaveLastPrice(ctx context.Context, price model.LastPrice) error
	GetLastPrice(ctx context.Context, symbol string) (model.LastPrice, error)
}

type entry struct {
	points    []model.TimeSeriesPoint
	fetchedAt time.Time
}

// Cache is a TTL cache of price series keyed by upper-cased symbol.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	fetcher     Fetcher
	store       LastKnownStore
	now         func() time.Time
	ttl         time.Duration
	concurrency int
	log         zerolog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithTTL sets the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithConcurrency bounds parallel fetches. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(c *Cache) {
		if n >= 1 {
			c.concurrency = n
		}
	}
}

// WithStore enables the last known price tier.
func WithStore(store LastKnownStore) Option {
	return func(c *Cache) { c.store = store }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New creates a Cache backed by fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		entries:     make(map[string]entry),
		fetcher:     fetcher,
		now:         time.Now,
		ttl:         DefaultTTL,
		concurrency: DefaultConcurrency,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "pricecache").Logger()
	return c
}

// TTL returns the freshness window of the cache.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// GetCachedPrice returns the cached series of symbol if it is younger than
// the TTL. It never fetches.
func (c *Cache) GetCachedPrice(symbol string) ([]model.TimeSeriesPoint, bool) {
	e, ok := c.lookup(symbol)
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.points, true
}

// GetRealtimePrice fetches symbol once, stores the result and returns it.
// A failed fetch is logged and yields an empty series; the previous entry is
// kept as is.
func (c *Cache) GetRealtimePrice(ctx context.Context, symbol string) []model.TimeSeriesPoint {
	symbol = model.NormalizeSymbol(symbol)

	points, err := c.fetcher.Fetch(ctx, symbol)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch realtime price")
		return []model.TimeSeriesPoint{}
	}
	if points == nil {
		points = []model.TimeSeriesPoint{}
	}

	c.mu.Lock()
	c.entries[symbol] = entry{points: points, fetchedAt: c.now()}
	c.mu.Unlock()

	c.persist(ctx, symbol, points)
	return points
}

// GetPrice returns the cached series when fresh, otherwise fetches it.
func (c *Cache) GetPrice(ctx context.Context, symbol string) []model.TimeSeriesPoint {
	if points, ok := c.GetCachedPrice(symbol); ok {
		return points
	}
	return c.GetRealtimePrice(ctx, symbol)
}

// Snapshot resolves the current price of every symbol.
//
// Symbols are resolved in parallel, at most WithConcurrency at a time. Once
// ctx is done no further fetches are started; symbols not yet resolved are
// left out and the snapshot is marked loading.
func (c *Cache) Snapshot(ctx context.Context, symbols []string) model.PriceSnapshot {
	snapshot := model.PriceSnapshot{
		Prices: make(map[string]float64, len(symbols)),
		Stale:  make(map[string]bool),
		AsOf:   c.now(),
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)

	wanted := distinct(symbols)
	for _, symbol := range wanted {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			price, stale, ok := c.resolve(ctx, symbol)
			if !ok {
				return nil
			}
			mu.Lock()
			snapshot.Prices[symbol] = price
			if stale {
				snapshot.Stale[symbol] = true
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	snapshot.Loading = len(snapshot.Prices) < len(wanted)
	return snapshot
}

// Series returns the series of every symbol, fetching those that are not
// fresh. Symbols whose fetch fails map to an empty series.
func (c *Cache) Series(ctx context.Context, symbols []string) map[string][]model.TimeSeriesPoint {
	var mu sync.Mutex
	out := make(map[string][]model.TimeSeriesPoint, len(symbols))

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for _, symbol := range distinct(symbols) {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			points := c.GetPrice(ctx, symbol)
			mu.Lock()
			out[symbol] = points
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Refresh fetches every symbol regardless of freshness and returns how many
// fetches produced at least one point.
func (c *Cache) Refresh(ctx context.Context, symbols []string) int {
	var mu sync.Mutex
	var refreshed int

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for _, symbol := range distinct(symbols) {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if len(c.GetRealtimePrice(ctx, symbol)) > 0 {
				mu.Lock()
				refreshed++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return refreshed
}

func (c *Cache) resolve(ctx context.Context, symbol string) (price float64, stale bool, ok bool) {
	if points, fresh := c.GetCachedPrice(symbol); fresh && len(points) > 0 {
		return lastPrice(points), false, true
	}

	if points := c.GetRealtimePrice(ctx, symbol); len(points) > 0 {
		return lastPrice(points), false, true
	}

	if e, found := c.lookup(symbol); found && len(e.points) > 0 {
		return lastPrice(e.points), true, true
	}

	if c.store != nil {
		last, err := c.store.GetLastPrice(ctx, symbol)
		if err == nil {
			return last.Price, true, true
		}
		c.log.Debug().Err(err).Str("symbol", symbol).Msg("No last known price")
	}

	return 0, false, false
}

func (c *Cache) lookup(symbol string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[model.NormalizeSymbol(symbol)]
	return e, ok
}

func (c *Cache) persist(ctx context.Context, symbol string, points []model.TimeSeriesPoint) {
	if c.store == nil || len(points) == 0 {
		return
	}
	last := points[len(points)-1]
	err := c.store.SaveLastPrice(ctx, model.LastPrice{
		Symbol: symbol,
		Price:  last.Price,
		AsOf:   last.Time(),
	})
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist last price")
	}
}

func lastPrice(points []model.TimeSeriesPoint) float64 {
	return points[len(points)-1].Price
}

func distinct(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = model.NormalizeSymbol(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
