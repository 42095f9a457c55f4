package coinwatch

// DefaultPageSize is the number of watchlist rows per page.
const DefaultPageSize = 10

// Page is a window over the watchlist.
type Page struct {
	Coins  []Coin
	Number int // 1-based, 1 for an empty watchlist.
	Size   int
	Pages  int // total number of pages, 0 for an empty watchlist.
	Count  int // total number of coins.
}

// Paginate returns page number of coins, size coins per page. Out of range
// page numbers are clamped to the first or last page, and a non positive size
// means DefaultPageSize.
func Paginate(coins []Coin, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (len(coins) + size - 1) / size
	number = min(number, pages)
	number = max(number, 1)
	start := min((number-1)*size, len(coins))
	end := min(start+size, len(coins))
	return Page{
		Coins:  coins[start:end],
		Number: number,
		Size:   size,
		Pages:  pages,
		Count:  len(coins),
	}
}

// HasNext reports whether there is a page after p.
func (p Page) HasNext() bool { return p.Number < p.Pages }

// HasPrev reports whether there is a page before p.
func (p Page) HasPrev() bool { return p.Number > 1 }
