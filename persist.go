package coinwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/etnz/coinwatch/slot"
	"github.com/sirupsen/logrus"
)

// Slot is a named durable location holding the persisted state blob.
// Implementations live in package slot.
type Slot interface {
	Name() string
	// Read returns the blob, or slot.ErrEmpty when nothing was ever written.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the blob.
	Write(ctx context.Context, blob []byte) error
}

// persisted state layout.
type jstate struct {
	Portfolio struct {
		Watchlist   []Coin          `json:"watchlist"`
		LastUpdated json.RawMessage `json:"lastUpdated"`
	} `json:"portfolio"`
	Coins struct {
		Selected []Coin `json:"selectedCoins"`
	} `json:"coins"`
}

// EncodeState returns the durable part of s: the watchlist, its last update
// and the selection. The catalog itself is never persisted.
func EncodeState(s State) ([]byte, error) {
	var w jsonObjectWriter
	w.Object("portfolio", func(p *jsonObjectWriter) {
		p.Append("watchlist", nonNil(s.Portfolio.Watchlist))
		if s.Portfolio.LastUpdated == nil {
			p.Append("lastUpdated", nil)
		} else {
			p.Append("lastUpdated", s.Portfolio.LastUpdated.UTC().Format(time.RFC3339Nano))
		}
	})
	w.Object("coins", func(c *jsonObjectWriter) {
		c.Append("selectedCoins", nonNil(s.Catalog.Selected))
	})
	return w.MarshalJSON()
}

func nonNil(coins []Coin) []Coin {
	if coins == nil {
		return []Coin{}
	}
	return coins
}

// DecodeState parses a blob written by EncodeState.
//
// Entries are sanitized on the way in: coins without id and duplicated ids are
// dropped, negative holdings are reset to zero and values are recomputed. An
// invalid lastUpdated is read as null.
func DecodeState(blob []byte) (State, error) {
	var j jstate
	if err := json.Unmarshal(blob, &j); err != nil {
		return State{}, fmt.Errorf("invalid state: %w", err)
	}
	var s State
	s.Portfolio.Watchlist = sanitize(j.Portfolio.Watchlist)
	s.Portfolio.LastUpdated = parseLastUpdated(j.Portfolio.LastUpdated)
	s.Catalog.Selected = sanitize(j.Coins.Selected)
	return s, nil
}

// parseLastUpdated returns nil unless raw is a RFC3339 string.
func parseLastUpdated(raw json.RawMessage) *time.Time {
	var str string
	if len(raw) == 0 || json.Unmarshal(raw, &str) != nil {
		return nil
	}
	at, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return nil
	}
	return &at
}

func sanitize(coins []Coin) []Coin {
	var res []Coin
	seen := make(map[string]bool, len(coins))
	for _, c := range coins {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if c.Holdings.IsNegative() {
			c.Holdings = Quantity{}
		}
		res = append(res, c.withValue())
	}
	return res
}

// Restore reads the state persisted in s.
//
// It never fails: an empty, unreadable or invalid slot yields the empty state,
// and the cause is logged.
func Restore(ctx context.Context, s Slot, log logrus.FieldLogger) State {
	log = log.WithField("slot", s.Name())
	blob, err := s.Read(ctx)
	if errors.Is(err, slot.ErrEmpty) {
		log.Debug("no persisted state, starting empty")
		return State{}
	}
	if err != nil {
		log.WithError(&PersistenceError{Slot: s.Name(), Op: "read", Err: err}).Warn("cannot restore state, starting empty")
		return State{}
	}
	state, err := DecodeState(blob)
	if err != nil {
		log.WithError(&PersistenceError{Slot: s.Name(), Op: "parse", Err: err}).Warn("cannot restore state, starting empty")
		return State{}
	}
	log.WithField("coins", len(state.Portfolio.Watchlist)).Debug("state restored")
	return state
}

// Persister mirrors committed states to a Slot.
//
// Save never blocks: writes happen in the background, one at a time, and only
// the most recent pending state is written. A state older than one already
// saved is never written.
type Persister struct {
	slot    Slot
	log     logrus.FieldLogger
	Timeout time.Duration // per write, 0 means none.

	mu      sync.Mutex
	pending *version
	saved   uint64
	running bool
	done    chan struct{} // closed when the writer stops, nil if never started.
}

type version struct {
	n     uint64
	state State
}

// NewPersister returns a Persister writing to s.
func NewPersister(s Slot, log logrus.FieldLogger) *Persister {
	return &Persister{slot: s, log: log.WithField("slot", s.Name()), Timeout: 5 * time.Second}
}

// Slot returns the slot written to.
func (p *Persister) Slot() Slot { return p.slot }

// Save schedules state, at version n, to be written.
func (p *Persister) Save(n uint64, state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= p.saved || (p.pending != nil && n <= p.pending.n) {
		return
	}
	p.pending = &version{n: n, state: state}
	if !p.running {
		p.running = true
		p.done = make(chan struct{})
		go p.writeLoop(p.done)
	}
}

// Flush waits for pending writes to complete.
func (p *Persister) Flush() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Persister) writeLoop(done chan struct{}) {
	defer close(done)
	for {
		p.mu.Lock()
		v := p.pending
		p.pending = nil
		if v == nil {
			p.running = false
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		if err := p.write(v.state); err != nil {
			p.log.WithError(err).WithField("version", v.n).Warn("state not saved")
			continue
		}
		p.mu.Lock()
		if v.n > p.saved {
			p.saved = v.n
		}
		p.mu.Unlock()
	}
}

func (p *Persister) write(state State) error {
	blob, err := EncodeState(state)
	if err != nil {
		return &PersistenceError{Slot: p.slot.Name(), Op: "encode", Err: err}
	}
	ctx := context.Background()
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := p.slot.Write(ctx, blob); err != nil {
		return &PersistenceError{Slot: p.slot.Name(), Op: "write", Err: err}
	}
	return nil
}
