package coinwatch

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// coin returns a market coin priced at price.
func coin(id string, price float64) Coin {
	return Coin{
		ID:             id,
		Name:           strings.ToUpper(id[:1]) + id[1:],
		Symbol:         id,
		Image:          "https://assets.example.com/" + id + ".png",
		CurrentPrice:   NO(price),
		PriceChange24h: 1.5,
		Sparkline:      []decimal.Decimal{decimal.NewFromFloat(price * 0.9), decimal.NewFromFloat(price)},
	}
}

// held returns a watched coin priced at price, with holdings.
func held(id string, price, holdings float64) Coin {
	c := coin(id, price)
	c.Holdings = Q(holdings)
	return c.withValue()
}

// quiet returns a logger discarding everything.
func quiet() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeGateway serves canned market data.
//
// If gate is set, calls block until a value is received from it.
type fakeGateway struct {
	mu        sync.Mutex
	market    []Coin
	err       error
	gate      chan struct{}
	listCalls int
	idsCalls  [][]string
	onCall    func() // called before answering, while still blocked
}

func (g *fakeGateway) wait(ctx context.Context) error {
	g.mu.Lock()
	onCall, gate := g.onCall, g.gate
	g.mu.Unlock()
	if onCall != nil {
		onCall()
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *fakeGateway) ListMarket(ctx context.Context) ([]Coin, error) {
	g.mu.Lock()
	g.listCalls++
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.market, nil
}

func (g *fakeGateway) MarketByIDs(ctx context.Context, ids []string) ([]Coin, error) {
	g.mu.Lock()
	g.idsCalls = append(g.idsCalls, ids)
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	var res []Coin
	for _, c := range g.market {
		for _, id := range ids {
			if c.ID == id {
				res = append(res, c)
			}
		}
	}
	return res, nil
}
