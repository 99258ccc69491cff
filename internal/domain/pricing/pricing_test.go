package pricing

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"parkshare/internal/domain/shared/timerange"
)

func window(t *testing.T, d time.Duration) timerange.Range {
	t.Helper()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r, err := timerange.New(start, start.Add(d))
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	return r
}

func TestQuoteSplitsExactly(t *testing.T) {
	cases := []struct {
		name         string
		rateCents    int64
		duration     time.Duration
		wantTotal    int64
		wantFee      int64
		wantEarnings int64
	}{
		{"8 dollars for 8 hours", 800, 8 * time.Hour, 6400, 640, 5760},
		{"10 dollars for 3 hours", 1000, 3 * time.Hour, 3000, 300, 2700},
		{"90 minutes", 1000, 90 * time.Minute, 1500, 150, 1350},
		{"fee rounds half up", 333, time.Hour, 333, 33, 300},
		{"sub-hour sliver", 1250, 25 * time.Minute, 521, 52, 469},
	}

	engine := NewEngine(0)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := engine.Quote(tc.rateCents, "USD", window(t, tc.duration))
			if err != nil {
				t.Fatalf("Quote: %v", err)
			}
			if got.Total.Cents != tc.wantTotal {
				t.Errorf("total = %d, want %d", got.Total.Cents, tc.wantTotal)
			}
			if got.PlatformFee.Cents != tc.wantFee {
				t.Errorf("fee = %d, want %d", got.PlatformFee.Cents, tc.wantFee)
			}
			if got.OwnerEarnings.Cents != tc.wantEarnings {
				t.Errorf("earnings = %d, want %d", got.OwnerEarnings.Cents, tc.wantEarnings)
			}
		})
	}
}

func TestQuoteFeeRate(t *testing.T) {
	engine := NewEngine(1500)
	got, err := engine.Quote(1000, "USD", window(t, 2*time.Hour))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if got.Total.Cents != 2000 || got.PlatformFee.Cents != 300 || got.OwnerEarnings.Cents != 1700 {
		t.Fatalf("unexpected breakdown: %+v", got)
	}
}

func TestQuoteValidation(t *testing.T) {
	engine := NewEngine(0)
	w := window(t, time.Hour)

	if _, err := engine.Quote(0, "USD", w); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("zero rate: %v", err)
	}
	if _, err := engine.Quote(-100, "USD", w); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("negative rate: %v", err)
	}
	if _, err := engine.Quote(100, "", w); !errors.Is(err, ErrCurrencyUnset) {
		t.Fatalf("missing currency: %v", err)
	}
	if _, err := engine.Quote(100, "USD", timerange.Range{}); !errors.Is(err, timerange.ErrInvalidRange) {
		t.Fatalf("empty window: %v", err)
	}
	over := Engine{FeeBps: 10001}
	if _, err := over.Quote(100, "USD", w); !errors.Is(err, ErrInvalidFee) {
		t.Fatalf("excessive fee: %v", err)
	}
}

// The split must stay exact for arbitrary inputs: fee plus earnings always
// reconstructs the total, cent for cent.
func TestQuoteSplitAlwaysBalances(t *testing.T) {
	engine := NewEngine(0)
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		rate := rng.Int63n(100_000) + 1
		dur := time.Duration(rng.Int63n(72*3600)+60) * time.Second
		w, err := timerange.New(start, start.Add(dur))
		if err != nil {
			t.Fatalf("window: %v", err)
		}
		got, err := engine.Quote(rate, "USD", w)
		if err != nil {
			t.Fatalf("Quote(rate=%d, dur=%s): %v", rate, dur, err)
		}
		if got.PlatformFee.Cents+got.OwnerEarnings.Cents != got.Total.Cents {
			t.Fatalf("split does not balance: rate=%d dur=%s %+v", rate, dur, got)
		}
		if got.PlatformFee.Cents < 0 || got.OwnerEarnings.Cents < 0 {
			t.Fatalf("negative component: %+v", got)
		}
	}
}
