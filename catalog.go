package coinwatch

import (
	"slices"
	"strings"
)

// Status is the loading status of the catalog.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// MarshalText makes the status readable in json.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Catalog is the coin catalog store: the coins available for selection, as
// last fetched from the market, and the coins selected but not yet added to
// the watchlist.
type Catalog struct {
	Coins    []Coin
	Status   Status
	Err      string // message of the last failed fetch, "" otherwise.
	Selected []Coin // unique by ID.
}

// CatalogCommand is a transition of the Catalog. The set of commands is
// closed, see Catalog.Apply.
type CatalogCommand interface {
	Command
	catalogCommand()
}

// BeginFetch marks the catalog as loading and clears the last error.
type BeginFetch struct{}

// ReplaceCatalog replaces the catalog with freshly fetched coins.
type ReplaceCatalog struct{ Coins []Coin }

// FailFetch records a failed fetch.
type FailFetch struct{ Message string }

// SettleFetch ends a fetch, whatever its outcome: a catalog still loading
// becomes idle.
type SettleFetch struct{}

// ToggleCoin selects Coin, or unselects it if it was already selected.
type ToggleCoin struct{ Coin Coin }

// ClearSelection empties the selection.
type ClearSelection struct{}

func (BeginFetch) command()            {}
func (ReplaceCatalog) command()        {}
func (FailFetch) command()             {}
func (SettleFetch) command()           {}
func (ToggleCoin) command()            {}
func (ClearSelection) command()        {}
func (BeginFetch) catalogCommand()     {}
func (ReplaceCatalog) catalogCommand() {}
func (FailFetch) catalogCommand()      {}
func (SettleFetch) catalogCommand()    {}
func (ToggleCoin) catalogCommand()     {}
func (ClearSelection) catalogCommand() {}

// Apply returns the catalog after cmd.
func (c Catalog) Apply(cmd CatalogCommand) Catalog {
	switch v := cmd.(type) {
	case BeginFetch:
		c.Status, c.Err = StatusLoading, ""
	case ReplaceCatalog:
		c.Coins = slices.Clone(v.Coins)
		c.Status, c.Err = StatusIdle, ""
	case FailFetch:
		c.Status, c.Err = StatusError, v.Message
	case SettleFetch:
		if c.Status == StatusLoading {
			c.Status = StatusIdle
		}
	case ToggleCoin:
		if c.IsSelected(v.Coin.ID) {
			c.Selected = slices.DeleteFunc(slices.Clone(c.Selected), func(s Coin) bool { return s.ID == v.Coin.ID })
		} else {
			c.Selected = append(slices.Clone(c.Selected), v.Coin.clone())
		}
	case ClearSelection:
		c.Selected = nil
	}
	return c
}

// Loading reports whether a fetch is in flight.
func (c Catalog) Loading() bool { return c.Status == StatusLoading }

// IsSelected reports whether the coin id is in the selection.
func (c Catalog) IsSelected(id string) bool {
	return slices.ContainsFunc(c.Selected, func(s Coin) bool { return s.ID == id })
}

// Get returns the catalog coin id.
func (c Catalog) Get(id string) (Coin, bool) {
	i := slices.IndexFunc(c.Coins, func(s Coin) bool { return s.ID == id })
	if i < 0 {
		return Coin{}, false
	}
	return c.Coins[i], true
}

// Search returns at most limit catalog coins whose name or symbol contains
// term, ignoring case. An empty term matches every coin, a non positive limit
// means no limit.
func (c Catalog) Search(term string, limit int) []Coin {
	term = strings.ToLower(strings.TrimSpace(term))
	var res []Coin
	for _, coin := range c.Coins {
		if limit > 0 && len(res) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(coin.Name), term) || strings.Contains(strings.ToLower(coin.Symbol), term) {
			res = append(res, coin)
		}
	}
	return res
}

func (c Catalog) clone() Catalog {
	c.Coins = slices.Clone(c.Coins)
	c.Selected = slices.Clone(c.Selected)
	return c
}
