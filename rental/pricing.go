package rental

import "errors"

// ErrInvalidDuration is returned for a requested duration outside the
// tariff table.
var ErrInvalidDuration = errors.New("invalid rental duration")

type tier struct {
	minutes int
	price   int
}

// The fixed tariff table. Both the durations and the prices are part of the
// external contract.
var tariff = []tier{
	{30, 15},
	{60, 25},
	{120, 35},
}

// Price returns the price for a requested duration. Only the exact tariff
// durations are accepted.
func Price(minutes int) (int, error) {
	for _, t := range tariff {
		if t.minutes == minutes {
			return t.price, nil
		}
	}
	return 0, ErrInvalidDuration
}

// ElapsedPrice prices an actual elapsed duration at finalization: the
// elapsed time is rounded up to the next tariff tier, and anything beyond
// the longest tier is charged at that tier.
func ElapsedPrice(minutes int) int {
	for _, t := range tariff {
		if minutes <= t.minutes {
			return t.price
		}
	}
	return tariff[len(tariff)-1].price
}
