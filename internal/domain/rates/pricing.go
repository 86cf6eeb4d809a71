package rates

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoNightlyPrices is returned when CalculateTotal is invoked with no
// nightly prices. Callers guarantee a non-empty, gap-free sequence for the
// stay; completeness itself is checked by the availability engine.
var ErrNoNightlyPrices = errors.New("rates: no nightly prices for the stay")

var percentageDivisor = decimal.NewFromInt(100)

// CalculateTotal computes the total price of one room for a stay.
//
// All arithmetic is decimal; nothing is rounded. In order:
//  1. base      = sum of nightly prices
//  2. flat      = ONCE charges once, PER_NIGHT charges times the night count
//  3. percent   = FIRST_NIGHT charges on the first night's price,
//     TOTAL_AMOUNT charges on the base price
//  4. vat       = base * vat rate (VAT never applies to charges)
//  5. total     = base + flat + percent + vat
//
// Pure function: no side effects, safe for concurrent use.
func CalculateTotal(nightly []NightlyPrice, flat []FlatCharge, percentage []PercentageCharge, vat decimal.Decimal) (decimal.Decimal, error) {
	if len(nightly) == 0 {
		return decimal.Decimal{}, ErrNoNightlyPrices
	}

	base := decimal.Zero
	for _, night := range nightly {
		base = base.Add(night.Price)
	}

	nights := decimal.NewFromInt(int64(len(nightly)))
	flatTotal := decimal.Zero
	for _, charge := range flat {
		switch charge.ChargeType {
		case ChargeOnce:
			flatTotal = flatTotal.Add(charge.Price)
		case ChargePerNight:
			flatTotal = flatTotal.Add(charge.Price.Mul(nights))
		}
	}

	firstNight := nightly[0].Price
	percentageTotal := decimal.Zero
	for _, charge := range percentage {
		rate := charge.Percentage.Div(percentageDivisor)
		switch charge.AppliedOn {
		case AppliedOnFirstNight:
			percentageTotal = percentageTotal.Add(rate.Mul(firstNight))
		case AppliedOnTotalAmount:
			percentageTotal = percentageTotal.Add(rate.Mul(base))
		}
	}

	vatTotal := base.Mul(vat)

	return base.Add(flatTotal).Add(percentageTotal).Add(vatTotal), nil
}
