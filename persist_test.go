package coinwatch

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/etnz/coinwatch/slot"
)

func sampleState() State {
	at := time.Date(2025, 3, 1, 12, 30, 0, 123000000, time.UTC)
	return State{
		Portfolio: Portfolio{
			Watchlist:   []Coin{held("btc", 50000.5, 2), held("eth", 3000, 0.125)},
			LastUpdated: &at,
		},
		Catalog: Catalog{
			Selected: []Coin{coin("sol", 150)},
		},
	}
}

// equivalent fails if a and b do not hold the same durable state.
func equivalent(t *testing.T, got, want State) {
	t.Helper()
	gotBlob, err := EncodeState(got)
	if err != nil {
		t.Fatalf("EncodeState() error = %v", err)
	}
	wantBlob, err := EncodeState(want)
	if err != nil {
		t.Fatalf("EncodeState() error = %v", err)
	}
	if string(gotBlob) != string(wantBlob) {
		t.Errorf("state =\n%s\nwant\n%s", gotBlob, wantBlob)
	}
}

func TestEncodeState(t *testing.T) {
	s := State{Portfolio: Portfolio{Watchlist: []Coin{held("btc", 50000, 2)}}}
	s.Catalog.Coins = []Coin{coin("eth", 1)} // not persisted
	blob, err := EncodeState(s)
	if err != nil {
		t.Fatalf("EncodeState() error = %v", err)
	}
	want := `{"portfolio":{"watchlist":[{"id":"btc","name":"Btc","symbol":"btc","image":"https://assets.example.com/btc.png","current_price":50000,"price_change_percentage_24h":1.5,"sparkline_in_7d":{"price":[45000,50000]},"holdings":2,"value":100000}],"lastUpdated":null},"coins":{"selectedCoins":[]}}`
	if string(blob) != want {
		t.Errorf("EncodeState() =\n%s\nwant\n%s", blob, want)
	}
}

func TestDecodeState_RoundTrip(t *testing.T) {
	want := sampleState()
	s := want
	for i := 0; i < 3; i++ {
		blob, err := EncodeState(s)
		if err != nil {
			t.Fatalf("EncodeState() error = %v", err)
		}
		s, err = DecodeState(blob)
		if err != nil {
			t.Fatalf("DecodeState() error = %v", err)
		}
		equivalent(t, s, want)
	}
	if s.Portfolio.LastUpdated == nil || !s.Portfolio.LastUpdated.Equal(*want.Portfolio.LastUpdated) {
		t.Errorf("LastUpdated = %v, want %v", s.Portfolio.LastUpdated, want.Portfolio.LastUpdated)
	}
	if got, want := ids(s.Catalog.Selected), []string{"sol"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Selected = %v, want %v", got, want)
	}
	checkValues(t, s.Portfolio)
}

func TestDecodeState(t *testing.T) {
	testCases := []struct {
		name        string
		blob        string
		wantErr     bool
		wantIDs     []string
		wantUpdated bool
		wantSel     []string
	}{
		{name: "Not json", blob: `not json at all`, wantErr: true},
		{name: "Wrong structure", blob: `{"portfolio":{"watchlist":"btc"}}`, wantErr: true},
		{name: "Null", blob: `null`},
		{name: "Empty object", blob: `{}`},
		{
			name:        "Missing holdings default to zero",
			blob:        `{"portfolio":{"watchlist":[{"id":"btc","current_price":50000}],"lastUpdated":"2025-03-01T12:00:00.000Z"}}`,
			wantIDs:     []string{"btc"},
			wantUpdated: true,
		},
		{
			name:    "Invalid lastUpdated reads as null",
			blob:    `{"portfolio":{"watchlist":[],"lastUpdated":"yesterday"},"coins":{"selectedCoins":[{"id":"eth"}]}}`,
			wantSel: []string{"eth"},
		},
		{
			name:    "Number lastUpdated reads as null",
			blob:    `{"portfolio":{"watchlist":[{"id":"btc","current_price":50000,"holdings":2}],"lastUpdated":12345}}`,
			wantIDs: []string{"btc"},
		},
		{
			name:    "Object lastUpdated reads as null",
			blob:    `{"portfolio":{"watchlist":[{"id":"btc"}],"lastUpdated":{"at":"2025-03-01T12:00:00Z"}},"coins":{"selectedCoins":[{"id":"eth"}]}}`,
			wantIDs: []string{"btc"},
			wantSel: []string{"eth"},
		},
		{
			name:    "Sanitized",
			blob:    `{"portfolio":{"watchlist":[{"id":"btc","current_price":1,"holdings":-3},{"id":""},{"id":"btc","holdings":9}]},"coins":{"selectedCoins":[{"id":"a"},{"id":"a"}]}}`,
			wantIDs: []string{"btc"},
			wantSel: []string{"a"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := DecodeState([]byte(tc.blob))
			if (err != nil) != tc.wantErr {
				t.Fatalf("DecodeState() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if got := ids(s.Portfolio.Watchlist); !reflect.DeepEqual(got, tc.wantIDs) {
				t.Errorf("watchlist = %v, want %v", got, tc.wantIDs)
			}
			if got := s.Portfolio.LastUpdated != nil; got != tc.wantUpdated {
				t.Errorf("LastUpdated = %v, want set: %v", s.Portfolio.LastUpdated, tc.wantUpdated)
			}
			if got := ids(s.Catalog.Selected); !reflect.DeepEqual(got, tc.wantSel) {
				t.Errorf("selected = %v, want %v", got, tc.wantSel)
			}
			for _, c := range s.Portfolio.Watchlist {
				if c.Holdings.IsNegative() {
					t.Errorf("%s: negative holdings %v", c.ID, c.Holdings)
				}
			}
			checkValues(t, s.Portfolio)
		})
	}
}

type brokenSlot struct{ err error }

func (s brokenSlot) Name() string                                 { return "broken" }
func (s brokenSlot) Read(ctx context.Context) ([]byte, error)     { return nil, s.err }
func (s brokenSlot) Write(ctx context.Context, blob []byte) error { return s.err }

func TestRestore(t *testing.T) {
	ctx := context.Background()

	corrupt := slot.NewMemory("corrupt")
	corrupt.Write(ctx, []byte("\x00{{{ definitely not json"))

	saved := slot.NewMemory("saved")
	blob, _ := EncodeState(sampleState())
	saved.Write(ctx, blob)

	testCases := []struct {
		name string
		slot Slot
		want State
	}{
		{name: "Empty slot", slot: slot.NewMemory("empty"), want: State{}},
		{name: "Corrupt blob", slot: corrupt, want: State{}},
		{name: "Unreadable slot", slot: brokenSlot{err: errors.New("disk on fire")}, want: State{}},
		{name: "Saved state", slot: saved, want: sampleState()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Restore(ctx, tc.slot, quiet())
			equivalent(t, got, tc.want)
			if tc.want.Portfolio.LastUpdated == nil && got.Portfolio.LastUpdated != nil {
				t.Errorf("LastUpdated = %v, want nil", got.Portfolio.LastUpdated)
			}
		})
	}
}

func TestPersister_Save(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory("state")
	p := NewPersister(mem, quiet())

	newer := sampleState()
	older := State{}

	p.Save(2, newer)
	p.Flush()
	p.Save(1, older) // older than the saved version, never written
	p.Flush()

	got := Restore(ctx, mem, quiet())
	equivalent(t, got, newer)
}

func TestPersister_WriteFailure(t *testing.T) {
	p := NewPersister(brokenSlot{err: errors.New("read-only")}, quiet())
	p.Save(1, sampleState()) // must not block nor panic
	p.Flush()
}
