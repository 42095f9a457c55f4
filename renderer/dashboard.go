package renderer

import (
	"strings"
	"time"

	"github.com/etnz/coinwatch"
)

// Dashboard is the view of the portfolio: its total, allocation, and one
// page of the watchlist.
type Dashboard struct {
	Total       string
	LastUpdated string // "-" if never refreshed
	Breakdown   []Share
	Rows        []Row
	Page        int
	Pages       int
	Count       int
}

// Share is a line of the allocation breakdown.
type Share struct {
	Label   string
	Percent string
}

// Row is a line of the watchlist table.
type Row struct {
	ID       string
	Label    string
	Price    string
	Change   string
	Holdings string
	Value    string
}

// NewDashboard builds the dashboard of p, with prices in currency, showing
// page number of the watchlist, size rows per page.
func NewDashboard(p coinwatch.Portfolio, currency string, number, size int) *Dashboard {
	page := coinwatch.Paginate(p.Watchlist, number, size)
	d := &Dashboard{
		Total:       p.Total().In(currency).String(),
		LastUpdated: "-",
		Page:        page.Number,
		Pages:       page.Pages,
		Count:       page.Count,
	}
	if p.LastUpdated != nil {
		d.LastUpdated = p.LastUpdated.Local().Format(time.DateTime)
	}
	for _, a := range p.Allocations() {
		d.Breakdown = append(d.Breakdown, Share{Label: label(a.Coin), Percent: a.Percent.String()})
	}
	for _, c := range page.Coins {
		d.Rows = append(d.Rows, Row{
			ID:       c.ID,
			Label:    label(c),
			Price:    c.CurrentPrice.In(currency).PriceString(),
			Change:   c.PriceChange24h.SignedString(),
			Holdings: c.Holdings.String(),
			Value:    c.Value.In(currency).String(),
		})
	}
	return d
}

// label is "Name (SYMBOL)".
func label(c coinwatch.Coin) string {
	return c.Name + " (" + strings.ToUpper(c.Symbol) + ")"
}
