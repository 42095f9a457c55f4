package coinwatch

import (
	"slices"
	"time"
)

// Portfolio is the watchlist store: the coins the user tracks, with their
// holdings, and the time of the last successful market refresh.
//
// A Portfolio is a value: Apply never modifies its receiver and returns the
// next state instead.
type Portfolio struct {
	Watchlist   []Coin     // unique by ID, in insertion order.
	LastUpdated *time.Time // nil until the first successful refresh.
}

// PortfolioCommand is a transition of the Portfolio. The set of commands is
// closed, see Portfolio.Apply.
type PortfolioCommand interface {
	Command
	portfolioCommand()
}

// AddCoins appends coins not already watched, with zero holdings.
type AddCoins struct{ Coins []Coin }

// RemoveCoin removes the coin with ID from the watchlist, if present.
type RemoveCoin struct{ ID string }

// SetHoldings sets the holdings of the watched coin ID and recomputes its
// value. Negative quantities are ignored.
type SetHoldings struct {
	ID       string
	Holdings Quantity
}

// MergeMarket merges a market snapshot into the watchlist, and marks the
// portfolio as updated At.
type MergeMarket struct {
	Snapshot []Coin
	At       time.Time
}

// ResetPortfolio empties the watchlist and forgets the last update.
type ResetPortfolio struct{}

func (AddCoins) command()                {}
func (RemoveCoin) command()              {}
func (SetHoldings) command()             {}
func (MergeMarket) command()             {}
func (ResetPortfolio) command()          {}
func (AddCoins) portfolioCommand()       {}
func (RemoveCoin) portfolioCommand()     {}
func (SetHoldings) portfolioCommand()    {}
func (MergeMarket) portfolioCommand()    {}
func (ResetPortfolio) portfolioCommand() {}

// Apply returns the portfolio after cmd.
func (p Portfolio) Apply(cmd PortfolioCommand) Portfolio {
	switch c := cmd.(type) {
	case AddCoins:
		return p.add(c.Coins)
	case RemoveCoin:
		return p.remove(c.ID)
	case SetHoldings:
		return p.setHoldings(c.ID, c.Holdings)
	case MergeMarket:
		return p.merge(c.Snapshot, c.At)
	case ResetPortfolio:
		return Portfolio{}
	}
	return p
}

func (p Portfolio) add(coins []Coin) Portfolio {
	watchlist := slices.Clone(p.Watchlist)
	for _, c := range coins {
		if c.ID == "" || slices.ContainsFunc(watchlist, func(w Coin) bool { return w.ID == c.ID }) {
			continue
		}
		c = c.clone()
		c.Holdings = Quantity{}
		watchlist = append(watchlist, c.withValue())
	}
	p.Watchlist = watchlist
	return p
}

func (p Portfolio) remove(id string) Portfolio {
	p.Watchlist = slices.DeleteFunc(slices.Clone(p.Watchlist), func(c Coin) bool { return c.ID == id })
	return p
}

func (p Portfolio) setHoldings(id string, holdings Quantity) Portfolio {
	if holdings.IsNegative() {
		return p
	}
	i := p.index(id)
	if i < 0 {
		return p
	}
	watchlist := slices.Clone(p.Watchlist)
	c := watchlist[i]
	c.Holdings = holdings
	watchlist[i] = c.withValue()
	p.Watchlist = watchlist
	return p
}

// merge updates every watched coin found in snapshot, and leaves the others
// untouched. Holdings are never read from the snapshot.
func (p Portfolio) merge(snapshot []Coin, at time.Time) Portfolio {
	fresh := make(map[string]Coin, len(snapshot))
	for _, c := range snapshot {
		if _, dup := fresh[c.ID]; !dup {
			fresh[c.ID] = c
		}
	}
	watchlist := make([]Coin, len(p.Watchlist))
	for i, c := range p.Watchlist {
		if f, ok := fresh[c.ID]; ok {
			c = c.withMarket(f)
		}
		watchlist[i] = c
	}
	p.Watchlist = watchlist
	p.LastUpdated = &at
	return p
}

func (p Portfolio) index(id string) int {
	return slices.IndexFunc(p.Watchlist, func(c Coin) bool { return c.ID == id })
}

// Has reports whether the coin id is watched.
func (p Portfolio) Has(id string) bool { return p.index(id) >= 0 }

// Get returns the watched coin id.
func (p Portfolio) Get(id string) (Coin, bool) {
	i := p.index(id)
	if i < 0 {
		return Coin{}, false
	}
	return p.Watchlist[i], true
}

// IDs returns the ids of all watched coins, in watchlist order.
func (p Portfolio) IDs() []string {
	ids := make([]string, 0, len(p.Watchlist))
	for _, c := range p.Watchlist {
		ids = append(ids, c.ID)
	}
	return ids
}

// Total returns the sum of all watched coins' value.
func (p Portfolio) Total() Money {
	var total Money
	for _, c := range p.Watchlist {
		total = total.Add(c.Value)
	}
	return total
}

// Allocation returns the share of c's value in the portfolio total, 0 when
// the total is zero.
func (p Portfolio) Allocation(c Coin) Percent {
	return share(c.Value.Decimal(), p.Total().Decimal())
}

// Allocation is a watched coin and its share of the portfolio total.
type Allocation struct {
	Coin    Coin
	Percent Percent
}

// Allocations returns the share of every watched coin, in watchlist order.
func (p Portfolio) Allocations() []Allocation {
	total := p.Total().Decimal()
	res := make([]Allocation, 0, len(p.Watchlist))
	for _, c := range p.Watchlist {
		res = append(res, Allocation{Coin: c, Percent: share(c.Value.Decimal(), total)})
	}
	return res
}

func (p Portfolio) clone() Portfolio {
	p.Watchlist = slices.Clone(p.Watchlist)
	for i, c := range p.Watchlist {
		p.Watchlist[i] = c.clone()
	}
	if p.LastUpdated != nil {
		at := *p.LastUpdated
		p.LastUpdated = &at
	}
	return p
}
