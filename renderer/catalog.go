package renderer

import "github.com/etnz/coinwatch"

// CatalogView is the view of the coin picker.
type CatalogView struct {
	Status   string
	Err      string
	Term     string
	Rows     []CatalogRow
	Selected int
	Matches  int // number of rows, before the limit
	Total    int // number of coins in the catalog
}

// CatalogRow is a line of the picker.
type CatalogRow struct {
	ID       string
	Label    string
	Price    string
	Change   string
	Selected bool
	Watched  bool
}

// NewCatalogView builds the picker view of the catalog coins matching term,
// at most limit of them, with prices in currency. Coins already in p are
// flagged as watched.
func NewCatalogView(c coinwatch.Catalog, p coinwatch.Portfolio, term string, limit int, currency string) *CatalogView {
	v := &CatalogView{
		Status:   c.Status.String(),
		Err:      c.Err,
		Term:     term,
		Selected: len(c.Selected),
		Matches:  len(c.Search(term, 0)),
		Total:    len(c.Coins),
	}
	for _, coin := range c.Search(term, limit) {
		v.Rows = append(v.Rows, CatalogRow{
			ID:       coin.ID,
			Label:    label(coin),
			Price:    coin.CurrentPrice.In(currency).PriceString(),
			Change:   coin.PriceChange24h.SignedString(),
			Selected: c.IsSelected(coin.ID),
			Watched:  p.Has(coin.ID),
		})
	}
	return v
}
