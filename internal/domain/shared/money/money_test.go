package money

import (
	"errors"
	"testing"
)

func TestNewValidatesCurrency(t *testing.T) {
	if _, err := New(100, "usd"); err != nil {
		t.Fatalf("lowercase code should be accepted: %v", err)
	}
	m, _ := New(100, "usd")
	if m.Currency != "USD" {
		t.Fatalf("currency not upcased: %q", m.Currency)
	}
	if _, err := New(100, "US"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestAddSubCurrencyChecks(t *testing.T) {
	usd := Must(500, "USD")
	eur := Must(500, "EUR")

	if _, err := usd.Add(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	sum, err := usd.Add(Must(250, "USD"))
	if err != nil || sum.Cents != 750 {
		t.Fatalf("Add = %v, %v", sum, err)
	}
	diff, err := usd.Sub(Must(200, "USD"))
	if err != nil || diff.Cents != 300 {
		t.Fatalf("Sub = %v, %v", diff, err)
	}
}

func TestString(t *testing.T) {
	if got := Must(6400, "USD").String(); got != "64.00 USD" {
		t.Fatalf("String = %q", got)
	}
	if got := Must(305, "EUR").String(); got != "3.05 EUR" {
		t.Fatalf("String = %q", got)
	}
}

func TestRoundHalfUpRatio(t *testing.T) {
	cases := []struct {
		name            string
		value, num, den int64
		want            int64
	}{
		{"exact", 800, 3600, 3600, 800},
		{"half rounds up", 1, 1, 2, 1},
		{"just below half rounds down", 1, 499, 1000, 0},
		{"ten percent", 6400, 1000, 10000, 640},
		{"ninety minutes at 10/hr", 1000, 5400, 3600, 1500},
		{"odd split", 999, 1000, 10000, 100},
		{"zero value", 0, 5, 7, 0},
		{"bad denominator", 100, 1, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RoundHalfUpRatio(tc.value, tc.num, tc.den); got != tc.want {
				t.Fatalf("RoundHalfUpRatio(%d, %d, %d) = %d, want %d", tc.value, tc.num, tc.den, got, tc.want)
			}
		})
	}
}
