package slot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type slot interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, blob []byte) error
}

func TestSlots(t *testing.T) {
	mr := miniredis.RunT(t)

	testCases := []struct {
		name string
		open func(t *testing.T) slot
	}{
		{
			name: "memory",
			open: func(t *testing.T) slot { return NewMemory("test") },
		},
		{
			name: "file",
			open: func(t *testing.T) slot { return NewFile(filepath.Join(t.TempDir(), "state", "coinwatch.json")) },
		},
		{
			name: "redis",
			open: func(t *testing.T) slot {
				r, err := NewRedis("redis://"+mr.Addr()+"/0", "coinwatch:"+t.Name())
				if err != nil {
					t.Fatalf("NewRedis() error = %v", err)
				}
				t.Cleanup(func() { r.Close() })
				return r
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) slot {
				s, err := OpenSQLite(filepath.Join(t.TempDir(), "coinwatch.db"), "state")
				if err != nil {
					t.Fatalf("OpenSQLite() error = %v", err)
				}
				t.Cleanup(func() { s.Close() })
				return s
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := tc.open(t)

			if _, err := s.Read(ctx); !errors.Is(err, ErrEmpty) {
				t.Fatalf("Read() on a new slot error = %v, want ErrEmpty", err)
			}

			for _, blob := range []string{`{"a":1}`, `{"b":2}`} {
				if err := s.Write(ctx, []byte(blob)); err != nil {
					t.Fatalf("Write(%s) error = %v", blob, err)
				}
				got, err := s.Read(ctx)
				if err != nil {
					t.Fatalf("Read() error = %v", err)
				}
				if !bytes.Equal(got, []byte(blob)) {
					t.Errorf("Read() = %s, want %s", got, blob)
				}
			}
		})
	}
}

func TestFile_NoTemporaryLeftover(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "state.json"))
	for i := 0; i < 3; i++ {
		if err := f.Write(context.Background(), []byte("{}")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d files in the slot directory, want 1", len(entries))
	}
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "coinwatch.db")

	s, err := OpenSQLite(path, "state")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Write(ctx, []byte("persisted")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path, "state")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()
	got, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Read() = %q, want %q", got, "persisted")
	}

	other, err := OpenSQLite(path, "other")
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer other.Close()
	if _, err := other.Read(ctx); !errors.Is(err, ErrEmpty) {
		t.Errorf("Read() of another key error = %v, want ErrEmpty", err)
	}
}

func TestRedis_InvalidURL(t *testing.T) {
	if _, err := NewRedis("http://nowhere", "k"); err == nil {
		t.Error("NewRedis() with a non redis url: want error")
	}
}
