package coingecko

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/coinwatch"
	"github.com/sirupsen/logrus"
)

const markets = `[
  {"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png","current_price":64321.5,
   "market_cap":1267000000000,"price_change_percentage_24h":-1.25,
   "sparkline_in_7d":{"price":[63000.1,63500,64321.5]}},
  {"id":"ethereum","symbol":"eth","name":"Ethereum","image":"https://img/eth.png","current_price":3012.25,
   "price_change_percentage_24h":2.5,"sparkline_in_7d":{"price":[]}}
]`

func quiet() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestClient returns a client calling h, and the number of calls h received.
func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL), WithRate(0), WithLogger(quiet())}, opts...)
	return New(opts...), &calls
}

func TestClient_ListMarket(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("path = %q, want /coins/markets", r.URL.Path)
		}
		want := map[string]string{
			"vs_currency":             "eur",
			"order":                   "market_cap_desc",
			"per_page":                "100",
			"page":                    "1",
			"sparkline":               "true",
			"price_change_percentage": "24h",
			"ids":                     "",
		}
		for k, v := range want {
			if got := r.URL.Query().Get(k); got != v {
				t.Errorf("query %s = %q, want %q", k, got, v)
			}
		}
		if got := r.Header.Get("x-cg-demo-api-key"); got != "secret" {
			t.Errorf("api key header = %q, want %q", got, "secret")
		}
		io.WriteString(w, markets)
	}, WithVsCurrency("EUR"), WithAPIKey("secret"))

	coins, err := c.ListMarket(context.Background())
	if err != nil {
		t.Fatalf("ListMarket() error = %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("got %d coins, want 2", len(coins))
	}
	btc := coins[0]
	if btc.ID != "bitcoin" || btc.Symbol != "btc" || btc.Name != "Bitcoin" || btc.Image != "https://img/btc.png" {
		t.Errorf("got %+v", btc)
	}
	if !btc.CurrentPrice.Equal(coinwatch.M(64321.5, "")) {
		t.Errorf("price = %v, want 64321.5", btc.CurrentPrice)
	}
	if !btc.PriceChange24h.Equal(-1.25) {
		t.Errorf("24h change = %v, want -1.25", btc.PriceChange24h)
	}
	if len(btc.Sparkline) != 3 || len(coins[1].Sparkline) != 0 {
		t.Errorf("sparklines = %d and %d points, want 3 and 0", len(btc.Sparkline), len(coins[1].Sparkline))
	}
	if !btc.Holdings.IsZero() || !btc.Value.IsZero() {
		t.Errorf("market coins must have no holdings: %v, %v", btc.Holdings, btc.Value)
	}
}

func TestClient_MarketByIDs(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "ids=bitcoin,ethereum") {
			t.Errorf("query = %q, want ids=bitcoin,ethereum", r.URL.RawQuery)
		}
		io.WriteString(w, markets)
	})

	coins, err := c.MarketByIDs(context.Background(), []string{"bitcoin", "ethereum"})
	if err != nil {
		t.Fatalf("MarketByIDs() error = %v", err)
	}
	if len(coins) != 2 {
		t.Errorf("got %d coins, want 2", len(coins))
	}

	coins, err = c.MarketByIDs(context.Background(), nil)
	if err != nil || coins != nil {
		t.Errorf("MarketByIDs(nil) = %v, %v, want nothing", coins, err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("got %d calls, want 1: no call without ids", got)
	}
}

func TestClient_MarketByIDs_Chunks(t *testing.T) {
	ids := make([]string, 600)
	for i := range ids {
		ids[i] = fmt.Sprintf("coin-%d", i)
	}
	// answers one record per requested id, and fails the request number fail.
	serve := func(fail int32, calls *atomic.Int32, sizes *[]int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			requested := strings.Split(r.URL.Query().Get("ids"), ",")
			*sizes = append(*sizes, len(requested))
			if r.URL.Query().Get("per_page") != "250" {
				t.Errorf("per_page = %q, want 250", r.URL.Query().Get("per_page"))
			}
			if calls.Load() == fail {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			var recs []string
			for _, id := range requested {
				recs = append(recs, fmt.Sprintf(`{"id":%q,"current_price":1}`, id))
			}
			io.WriteString(w, "["+strings.Join(recs, ",")+"]")
		}
	}

	t.Run("Concatenated", func(t *testing.T) {
		var sizes []int
		var h http.HandlerFunc
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { h(w, r) })
		h = serve(-1, calls, &sizes)

		coins, err := c.MarketByIDs(context.Background(), ids)
		if err != nil {
			t.Fatalf("MarketByIDs() error = %v", err)
		}
		if want := []int{250, 250, 100}; !slices.Equal(sizes, want) {
			t.Errorf("requested %v ids per call, want %v", sizes, want)
		}
		if len(coins) != len(ids) {
			t.Fatalf("got %d coins, want %d", len(coins), len(ids))
		}
		for i, c := range coins {
			if c.ID != ids[i] {
				t.Fatalf("coins[%d] = %q, want %q", i, c.ID, ids[i])
			}
		}
	})

	t.Run("Failed chunk", func(t *testing.T) {
		var sizes []int
		var h http.HandlerFunc
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { h(w, r) })
		h = serve(2, calls, &sizes)

		coins, err := c.MarketByIDs(context.Background(), ids)
		var uerr *coinwatch.UpstreamError
		if !errors.As(err, &uerr) || coins != nil {
			t.Fatalf("MarketByIDs() = %d coins, %v, want an UpstreamError", len(coins), err)
		}
		if got := calls.Load(); got != 2 {
			t.Errorf("got %d calls, want 2: stop at the first failure", got)
		}
	})
}

func TestClient_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "Rate limited",
			status:      http.StatusTooManyRequests,
			body:        `{"status":{"error_code":429,"error_message":"You've exceeded the Rate Limit."}}`,
			wantStatus:  429,
			wantMessage: "You've exceeded the Rate Limit.",
		},
		{
			name:        "Invalid key",
			status:      http.StatusUnauthorized,
			body:        `{"error":"invalid api key"}`,
			wantStatus:  401,
			wantMessage: "invalid api key",
		},
		{
			name:        "Plain text",
			status:      http.StatusBadGateway,
			body:        `upstream down`,
			wantStatus:  502,
			wantMessage: "502 Bad Gateway",
		},
		{
			name:        "Invalid body",
			status:      http.StatusOK,
			body:        `{"not":"a list"}`,
			wantMessage: "invalid response body",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			_, err := c.ListMarket(context.Background())
			var uerr *coinwatch.UpstreamError
			if !errors.As(err, &uerr) {
				t.Fatalf("ListMarket() error = %v, want an UpstreamError", err)
			}
			if uerr.Status != tc.wantStatus || uerr.Message != tc.wantMessage {
				t.Errorf("got status %d message %q, want %d %q", uerr.Status, uerr.Message, tc.wantStatus, tc.wantMessage)
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(WithBaseURL(srv.URL), WithRate(0), WithLogger(quiet()))

	_, err := c.MarketByIDs(context.Background(), []string{"bitcoin"})
	var nerr *coinwatch.NetworkError
	if !errors.As(err, &nerr) {
		t.Errorf("MarketByIDs() error = %v, want a NetworkError", err)
	}
}

func TestClient_ListingCache(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, markets)
	}, WithListingCache(t.TempDir(), time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		coins, err := c.ListMarket(ctx)
		if err != nil {
			t.Fatalf("ListMarket() error = %v", err)
		}
		if len(coins) != 2 {
			t.Fatalf("got %d coins, want 2", len(coins))
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("got %d calls for the listing, want 1", got)
	}

	// prices are never cached
	for i := 0; i < 2; i++ {
		if _, err := c.MarketByIDs(ctx, []string{"bitcoin"}); err != nil {
			t.Fatalf("MarketByIDs() error = %v", err)
		}
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("got %d calls, want 3", got)
	}
}

func TestClient_RateLimit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, markets)
	}, WithRate(1))

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := c.ListMarket(ctx); err != nil {
		t.Fatalf("first ListMarket() error = %v", err)
	}
	cancel()
	_, err := c.ListMarket(ctx)
	var nerr *coinwatch.NetworkError
	if !errors.As(err, &nerr) {
		t.Errorf("ListMarket() beyond the rate with a cancelled context: error = %v, want a NetworkError", err)
	}
}
