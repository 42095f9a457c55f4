// Package coinwatch maintains a crypto watchlist: the coins a user tracks,
// their holdings, and what they are worth at the latest market prices.
//
// The state is made of two stores:
//   - Portfolio, the watchlist store: coins with their holdings and derived
//     value, and the time of the last market refresh.
//   - Catalog, the coin catalog store: the coins available on the market, the
//     status of the last fetch, and the coins selected to be added.
//
// Stores are values. They only change through commands (AddCoins,
// SetHoldings, MergeMarket, ToggleCoin, ...) applied by a single pure Apply
// function per store. App owns the state, applies batches of commands
// atomically, calls the market Gateway, and mirrors every durable change to a
// Slot through a Persister.
//
// The central invariant is that holdings and market data never step on each
// other: a market refresh never changes holdings, a holdings edit never
// changes market data, and every coin's value is always its current price
// times its holdings.
package coinwatch
