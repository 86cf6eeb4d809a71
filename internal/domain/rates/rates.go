package rates

import (
	"github.com/shopspring/decimal"
)

// ChargeType says how a flat charge is applied to a stay.
type ChargeType string

const (
	ChargeOnce     ChargeType = "ONCE"
	ChargePerNight ChargeType = "PER_NIGHT"
)

// AppliedOn says which amount a percentage charge is computed from.
type AppliedOn string

const (
	AppliedOnFirstNight  AppliedOn = "FIRST_NIGHT"
	AppliedOnTotalAmount AppliedOn = "TOTAL_AMOUNT"
)

// Hotel carries the per-hotel pricing context. VAT is a decimal rate (0.1 = 10%).
type Hotel struct {
	ID       int64
	Name     string
	Address  string
	Timezone string
	VAT      decimal.Decimal
	Currency string
}

// Room exists only as catalog presence; quantity plays no part in pricing.
type Room struct {
	ID          int64
	HotelID     int64
	Name        string
	Description string
	Quantity    int
}

// NightlyPrice is the rate of a room for one calendar night.
// At most one row exists per (room, date).
type NightlyPrice struct {
	RoomID   int64
	Date     Date
	Quantity int
	Price    decimal.Decimal
}

// FlatCharge is a fixed surcharge, applied once per stay or once per night.
type FlatCharge struct {
	HotelID     int64
	Description string
	ChargeType  ChargeType
	Price       decimal.Decimal
}

// PercentageCharge is a surcharge of Percentage (0..100) applied to either
// the first night's price or the whole base price.
type PercentageCharge struct {
	HotelID     int64
	Description string
	AppliedOn   AppliedOn
	Percentage  decimal.Decimal
}

// Nights returns the number of nights in [checkIn, checkOut); the checkout
// date itself is not charged.
func Nights(checkIn, checkOut Date) int {
	return int(checkOut.Time.Sub(checkIn.Time).Hours() / 24)
}
