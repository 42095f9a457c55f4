package coinwatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnknownCoin is returned when a coin id is neither in the catalog nor in
// the selection.
var ErrUnknownCoin = errors.New("unknown coin")

// App owns the application state, and is the only way to change it.
//
// Commands are applied synchronously, under a lock, one batch at a time.
// Gateway calls are made outside of the lock, so a refresh merges into the
// watchlist as it is when the response lands, not as it was when the request
// left. Every change to the durable part of the state is handed over to the
// Persister, if any.
type App struct {
	gw        Gateway
	log       logrus.FieldLogger
	now       func() time.Time
	persister *Persister
	metrics   *Metrics

	mu      sync.Mutex
	state   State
	version uint64
}

// Option configures an App.
type Option func(*App)

// WithClock sets the clock used to time refreshes.
func WithClock(now func() time.Time) Option { return func(a *App) { a.now = now } }

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option { return func(a *App) { a.log = log } }

// WithPersister mirrors every durable change to p.
func WithPersister(p *Persister) Option { return func(a *App) { a.persister = p } }

// WithMetrics records gateway calls and the portfolio size in m.
func WithMetrics(m *Metrics) Option { return func(a *App) { a.metrics = m } }

// WithState sets the initial state.
func WithState(s State) Option { return func(a *App) { a.state = s.clone() } }

// New returns an App fetching market data from gw.
func New(gw Gateway, opts ...Option) *App {
	a := &App{
		gw:  gw,
		log: logrus.StandardLogger(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.metrics.observePortfolio(a.state.Portfolio)
	return a
}

// Open returns an App restored from s, and persisting to it.
//
// Open never fails on a missing or corrupt slot, it starts empty instead.
func Open(ctx context.Context, gw Gateway, s Slot, opts ...Option) *App {
	a := New(gw, opts...)
	a.state = Restore(ctx, s, a.log)
	a.persister = NewPersister(s, a.log)
	a.metrics.observePortfolio(a.state.Portfolio)
	return a
}

// Close waits for pending state writes.
func (a *App) Close() {
	if a.persister != nil {
		a.persister.Flush()
	}
}

// State returns a snapshot of the whole state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.clone()
}

// Portfolio returns a snapshot of the watchlist store.
func (a *App) Portfolio() Portfolio { return a.State().Portfolio }

// Catalog returns a snapshot of the catalog store.
func (a *App) Catalog() Catalog { return a.State().Catalog }

// Dispatch applies cmds as a single atomic change, and returns the new state.
func (a *App) Dispatch(cmds ...Command) State {
	return a.update(func(State) []Command { return cmds })
}

// update applies the commands returned by f, computed from the current state,
// as a single atomic change.
func (a *App) update(f func(State) []Command) State {
	a.mu.Lock()
	cmds := f(a.state)
	a.state = a.state.Apply(cmds...)
	next := a.state
	save := durable(cmds)
	if save {
		a.version++
	}
	n := a.version
	a.mu.Unlock()

	if save && a.persister != nil {
		a.persister.Save(n, next)
	}
	a.metrics.observePortfolio(next.Portfolio)
	return next.clone()
}

// FetchCatalog replaces the catalog with the market list.
//
// The catalog status is loading during the call and never stays loading
// after it returns. On failure the catalog is left unchanged, its status is
// error and the error is returned.
//
// Overlapping calls are not deduplicated: the last response to land wins.
func (a *App) FetchCatalog(ctx context.Context) error {
	a.Dispatch(BeginFetch{})
	defer a.Dispatch(SettleFetch{})

	a.log.Debug("fetching catalog")
	start := time.Now()
	coins, err := a.gw.ListMarket(ctx)
	a.metrics.observeCall("list_market", start, err)
	if err != nil {
		a.log.WithError(err).Warn("catalog fetch failed")
		a.Dispatch(FailFetch{Message: err.Error()})
		return fmt.Errorf("cannot fetch catalog: %w", err)
	}
	a.Dispatch(ReplaceCatalog{Coins: coins})
	a.log.WithField("coins", len(coins)).Info("catalog fetched")
	return nil
}

// EnsureCatalog fetches the catalog only if it is empty.
func (a *App) EnsureCatalog(ctx context.Context) error {
	if len(a.Catalog().Coins) > 0 {
		return nil
	}
	return a.FetchCatalog(ctx)
}

// ToggleSelection selects coin, or unselects it.
func (a *App) ToggleSelection(coin Coin) State { return a.Dispatch(ToggleCoin{Coin: coin}) }

// ToggleSelectionByID toggles the catalog coin id. A selected coin can always
// be unselected, even if the catalog was not fetched yet.
func (a *App) ToggleSelectionByID(id string) error {
	var found bool
	a.update(func(s State) []Command {
		coin, ok := s.Catalog.Get(id)
		if !ok {
			i := slices.IndexFunc(s.Catalog.Selected, func(c Coin) bool { return c.ID == id })
			if i < 0 {
				return nil
			}
			coin = s.Catalog.Selected[i]
		}
		found = true
		return []Command{ToggleCoin{Coin: coin}}
	})
	if !found {
		return fmt.Errorf("cannot toggle %q: %w", id, ErrUnknownCoin)
	}
	return nil
}

// ClearSelection empties the selection.
func (a *App) ClearSelection() State { return a.Dispatch(ClearSelection{}) }

// AddToWatchlist adds coins to the watchlist with zero holdings, and clears
// the selection, in one atomic change. Coins already watched are skipped.
func (a *App) AddToWatchlist(coins []Coin) State {
	return a.Dispatch(AddCoins{Coins: coins}, ClearSelection{})
}

// AddSelection adds the selected coins to the watchlist and clears the
// selection, in one atomic change.
func (a *App) AddSelection() State {
	return a.update(func(s State) []Command {
		return []Command{AddCoins{Coins: s.Catalog.Selected}, ClearSelection{}}
	})
}

// RemoveFromWatchlist removes the coin id, if watched.
func (a *App) RemoveFromWatchlist(id string) State { return a.Dispatch(RemoveCoin{ID: id}) }

// UpdateHoldings sets the holdings of the watched coin id.
//
// It returns a *ValidationError, and changes nothing, if holdings is not a
// finite non-negative number. It is a no-op if id is not watched.
func (a *App) UpdateHoldings(id string, holdings float64) error {
	q, err := QuantityFromFloat(holdings)
	if err != nil {
		return err
	}
	return a.SetHoldings(id, q)
}

// SetHoldings is like UpdateHoldings for an exact quantity.
func (a *App) SetHoldings(id string, holdings Quantity) error {
	if holdings.IsNegative() {
		return &ValidationError{Field: "holdings", Value: holdings, Reason: "must not be negative"}
	}
	a.Dispatch(SetHoldings{ID: id, Holdings: holdings})
	return nil
}

// RefreshFromMarket merges the current market data of every watched coin into
// the watchlist, and marks the portfolio as updated.
//
// It does nothing when the watchlist is empty. On failure, the state is left
// untouched and the error is returned; retrying is up to the caller.
func (a *App) RefreshFromMarket(ctx context.Context) error {
	ids := a.Portfolio().IDs()
	if len(ids) == 0 {
		return nil
	}
	start := time.Now()
	snapshot, err := a.gw.MarketByIDs(ctx, ids)
	a.metrics.observeCall("market_by_ids", start, err)
	if err != nil {
		a.log.WithError(err).Warn("watchlist refresh failed")
		return fmt.Errorf("cannot refresh watchlist: %w", err)
	}
	s := a.Dispatch(MergeMarket{Snapshot: snapshot, At: a.now()})
	a.log.WithFields(logrus.Fields{
		"watched":  len(s.Portfolio.Watchlist),
		"received": len(snapshot),
	}).Info("watchlist refreshed")
	return nil
}

// AutoRefresh refreshes the watchlist every interval, until ctx is done.
// Failures are logged, and the next tick tries again.
func (a *App) AutoRefresh(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if len(a.Portfolio().Watchlist) == 0 {
				continue
			}
			// failures are already logged.
			_ = a.RefreshFromMarket(ctx)
		}
	}
}

// Reset empties the watchlist, forgets the last update and clears the
// selection. The catalog is kept.
func (a *App) Reset() State { return a.Dispatch(ResetPortfolio{}, ClearSelection{}) }
