package coinwatch

// Command is a state transition. It is either a PortfolioCommand or a
// CatalogCommand.
type Command interface {
	command()
}

// State is the whole application state: the watchlist store and the coin
// catalog store.
type State struct {
	Portfolio Portfolio
	Catalog   Catalog
}

// Apply returns the state after all cmds, applied in order.
func (s State) Apply(cmds ...Command) State {
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case PortfolioCommand:
			s.Portfolio = s.Portfolio.Apply(c)
		case CatalogCommand:
			s.Catalog = s.Catalog.Apply(c)
		}
	}
	return s
}

// durable reports whether any of cmds changes the persisted part of the
// state: the watchlist, its last update, or the selection.
func durable(cmds []Command) bool {
	for _, cmd := range cmds {
		switch cmd.(type) {
		case PortfolioCommand, ToggleCoin, ClearSelection:
			return true
		}
	}
	return false
}

func (s State) clone() State {
	return State{Portfolio: s.Portfolio.clone(), Catalog: s.Catalog.clone()}
}
