package coinwatch

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Coin is a market entity, as listed by the market data gateway, and when
// watched, the user's holdings of it.
type Coin struct {
	ID             string
	Name           string
	Symbol         string
	Image          string
	CurrentPrice   Money
	PriceChange24h Percent
	Sparkline      []decimal.Decimal // 7 days of prices, oldest first, possibly empty.
	Holdings       Quantity
	Value          Money // always CurrentPrice × Holdings.
}

// withValue returns a copy of c where Value is derived from the current price
// and holdings.
func (c Coin) withValue() Coin {
	c.Value = c.CurrentPrice.Mul(c.Holdings)
	return c
}

// withMarket returns a copy of c where all market derived fields are taken
// from fresh, holdings are kept and the value is recomputed.
func (c Coin) withMarket(fresh Coin) Coin {
	c.Name = fresh.Name
	c.Symbol = fresh.Symbol
	c.Image = fresh.Image
	c.CurrentPrice = fresh.CurrentPrice.bare()
	c.PriceChange24h = fresh.PriceChange24h
	c.Sparkline = slices.Clone(fresh.Sparkline)
	return c.withValue()
}

// clone returns a deep copy of c, its money stripped of any currency.
func (c Coin) clone() Coin {
	c.Sparkline = slices.Clone(c.Sparkline)
	c.CurrentPrice = c.CurrentPrice.bare()
	c.Value = c.Value.bare()
	return c
}

// jcoin is the json proxy for a Coin. Field names follow the market API.
type jcoin struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Symbol         string      `json:"symbol"`
	Image          string      `json:"image"`
	CurrentPrice   Money       `json:"current_price"`
	PriceChange24h *float64    `json:"price_change_percentage_24h"`
	Sparkline      *jsparkline `json:"sparkline_in_7d"`
	Holdings       Quantity    `json:"holdings"`
	Value          Money       `json:"value"`
}

type jsparkline struct {
	Price []decimal.Decimal `json:"price"`
}

// MarshalJSON writes the coin with the market API field names, plus holdings
// and value.
func (c Coin) MarshalJSON() ([]byte, error) {
	prices := make([]json.Number, 0, len(c.Sparkline))
	for _, p := range c.Sparkline {
		prices = append(prices, json.Number(p.String()))
	}
	var w jsonObjectWriter
	w.Append("id", c.ID)
	w.Append("name", c.Name)
	w.Append("symbol", c.Symbol)
	w.Optional("image", c.Image)
	w.Append("current_price", c.CurrentPrice)
	w.Append("price_change_percentage_24h", float64(c.PriceChange24h))
	w.Object("sparkline_in_7d", func(s *jsonObjectWriter) {
		s.Append("price", prices)
	})
	w.Append("holdings", c.Holdings)
	w.Append("value", c.Value)
	return w.MarshalJSON()
}

// UnmarshalJSON reads a coin from the market API or from the persisted state.
// Missing holdings default to zero, value is always recomputed.
func (c *Coin) UnmarshalJSON(data []byte) error {
	var j jcoin
	if err := json.Unmarshal(data, &j); err != nil {
		return fmt.Errorf("invalid coin: %w", err)
	}
	*c = Coin{
		ID:           j.ID,
		Name:         j.Name,
		Symbol:       j.Symbol,
		Image:        j.Image,
		CurrentPrice: j.CurrentPrice,
		Holdings:     j.Holdings,
	}
	if j.PriceChange24h != nil {
		c.PriceChange24h = Percent(*j.PriceChange24h)
	}
	if j.Sparkline != nil {
		c.Sparkline = j.Sparkline.Price
	}
	*c = c.withValue()
	return nil
}
