package coinwatch

import "context"

// Gateway is the market data source.
//
// Both calls fail with a *NetworkError or an *UpstreamError when the remote
// call does not complete successfully. There is no partial success.
type Gateway interface {
	// ListMarket returns a batch of coins with all market fields, to populate
	// the catalog.
	ListMarket(ctx context.Context) ([]Coin, error)
	// MarketByIDs returns the market records of the given ids. Records may be
	// missing for ids the market does not know anymore.
	MarketByIDs(ctx context.Context, ids []string) ([]Coin, error)
}
