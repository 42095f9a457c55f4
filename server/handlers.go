package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/etnz/coinwatch"
	"github.com/etnz/coinwatch/renderer"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the API of an App.
type Handler struct {
	app  *coinwatch.App
	opts Options
	log  logrus.FieldLogger
}

type allocation struct {
	ID      string  `json:"id"`
	Percent float64 `json:"percent"`
}

func (h *Handler) portfolio(p coinwatch.Portfolio) gin.H {
	allocs := make([]allocation, 0, len(p.Watchlist))
	for _, a := range p.Allocations() {
		allocs = append(allocs, allocation{ID: a.Coin.ID, Percent: float64(a.Percent)})
	}
	return gin.H{
		"watchlist":   nonNil(p.Watchlist),
		"lastUpdated": p.LastUpdated,
		"total":       p.Total(),
		"currency":    h.opts.Currency,
		"allocations": allocs,
	}
}

func (h *Handler) catalog(s coinwatch.State, term string) gin.H {
	return gin.H{
		"status":   s.Catalog.Status,
		"error":    s.Catalog.Err,
		"coins":    nonNil(s.Catalog.Search(term, h.opts.SearchLimit)),
		"selected": nonNil(s.Catalog.Selected),
	}
}

func nonNil(coins []coinwatch.Coin) []coinwatch.Coin {
	if coins == nil {
		return []coinwatch.Coin{}
	}
	return coins
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// GetPortfolio returns the watchlist, its total and allocation.
func (h *Handler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, h.portfolio(h.app.Portfolio()))
}

// GetDashboard returns the markdown dashboard.
func (h *Handler) GetDashboard(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	md := renderer.RenderDashboard(renderer.NewDashboard(h.app.Portfolio(), h.opts.Currency, page, h.opts.PageSize))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

// GetWatchlist returns a page of the watchlist.
func (h *Handler) GetWatchlist(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(h.opts.PageSize)))
	if err != nil {
		fail(c, http.StatusBadRequest, &coinwatch.ValidationError{Field: "size", Value: c.Query("size"), Reason: "not a number"})
		return
	}
	p := coinwatch.Paginate(h.app.Portfolio().Watchlist, page, size)
	c.JSON(http.StatusOK, gin.H{
		"coins": nonNil(p.Coins),
		"page":  p.Number,
		"size":  p.Size,
		"pages": p.Pages,
		"count": p.Count,
	})
}

// AddSelection adds the selected coins to the watchlist, and clears the
// selection.
func (h *Handler) AddSelection(c *gin.Context) {
	s := h.app.AddSelection()
	c.JSON(http.StatusOK, h.portfolio(s.Portfolio))
}

// RemoveCoin removes a coin from the watchlist.
func (h *Handler) RemoveCoin(c *gin.Context) {
	s := h.app.RemoveFromWatchlist(c.Param("id"))
	c.JSON(http.StatusOK, h.portfolio(s.Portfolio))
}

type holdingsRequest struct {
	Holdings *float64 `json:"holdings" binding:"required"`
}

// UpdateHoldings sets the holdings of a watched coin.
func (h *Handler) UpdateHoldings(c *gin.Context) {
	id := c.Param("id")
	var req holdingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if !h.app.Portfolio().Has(id) {
		fail(c, http.StatusNotFound, errors.New("coin "+strconv.Quote(id)+" is not watched"))
		return
	}
	if err := h.app.UpdateHoldings(id, *req.Holdings); err != nil {
		fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, h.portfolio(h.app.Portfolio()))
}

// Refresh merges the latest market data into the watchlist.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.app.RefreshFromMarket(c.Request.Context()); err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, h.portfolio(h.app.Portfolio()))
}

// GetCatalog returns the catalog coins matching the q parameter.
func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog(h.app.State(), c.Query("q")))
}

// FetchCatalog fetches the catalog from the market.
func (h *Handler) FetchCatalog(c *gin.Context) {
	status := http.StatusOK
	if err := h.app.FetchCatalog(c.Request.Context()); err != nil {
		status = http.StatusBadGateway
	}
	c.JSON(status, h.catalog(h.app.State(), ""))
}

// ToggleSelection selects or unselects a catalog coin.
func (h *Handler) ToggleSelection(c *gin.Context) {
	if err := h.app.ToggleSelectionByID(c.Param("id")); err != nil {
		if errors.Is(err, coinwatch.ErrUnknownCoin) {
			fail(c, http.StatusNotFound, err)
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, h.catalog(h.app.State(), ""))
}

// ClearSelection empties the selection.
func (h *Handler) ClearSelection(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog(h.app.ClearSelection(), ""))
}
