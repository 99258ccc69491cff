package pricing

import (
	"errors"

	"parkshare/internal/domain/shared/money"
	"parkshare/internal/domain/shared/timerange"
)

var (
	ErrInvalidRate   = errors.New("pricing: hourly rate must be positive")
	ErrInvalidFee    = errors.New("pricing: fee rate out of range")
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
)

// DefaultFeeBps is the platform cut applied when no fee rate is configured:
// 1000 basis points, i.e. 10%.
const DefaultFeeBps = 1000

// Breakdown is the monetary split of a single reservation occurrence.
// OwnerEarnings is always Total minus PlatformFee; it is never rounded on
// its own, so the two parts add up to the total exactly.
type Breakdown struct {
	Total         money.Money
	PlatformFee   money.Money
	OwnerEarnings money.Money
}

// Engine computes reservation charges. FeeBps is the injected platform fee
// rate in basis points.
type Engine struct {
	FeeBps int64
}

func NewEngine(feeBps int64) Engine {
	if feeBps <= 0 {
		feeBps = DefaultFeeBps
	}
	return Engine{FeeBps: feeBps}
}

// Quote prices one occurrence. The total is hourlyRate x duration rounded
// half-up to whole cents; rounding happens only at the total and at the fee,
// never on intermediate values.
func (e Engine) Quote(hourlyRateCents int64, currency string, window timerange.Range) (Breakdown, error) {
	if hourlyRateCents <= 0 {
		return Breakdown{}, ErrInvalidRate
	}
	if len(currency) != 3 {
		return Breakdown{}, ErrCurrencyUnset
	}
	if err := window.Validate(); err != nil {
		return Breakdown{}, err
	}
	feeBps := e.FeeBps
	if feeBps <= 0 {
		feeBps = DefaultFeeBps
	}
	if feeBps > 10000 {
		return Breakdown{}, ErrInvalidFee
	}

	totalCents := money.RoundHalfUpRatio(hourlyRateCents, window.Seconds(), 3600)
	feeCents := money.RoundHalfUpRatio(totalCents, feeBps, 10000)

	total, err := money.New(totalCents, currency)
	if err != nil {
		return Breakdown{}, err
	}
	fee, err := money.New(feeCents, currency)
	if err != nil {
		return Breakdown{}, err
	}
	earnings, err := total.Sub(fee)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{Total: total, PlatformFee: fee, OwnerEarnings: earnings}, nil
}
