package ports

import (
	"context"

	"booking-api/internal/domain/rates"
)

// RateRepository is the read-only boundary over the rate store. The core
// never writes; hotels, rooms, prices and charges are owned elsewhere.
//
// Absence is data, not an error: a missing hotel comes back as (nil, nil)
// and empty result sets as empty slices. Services decide which absences are
// problems.
type RateRepository interface {
	// FindHotel returns the hotel or (nil, nil) when it does not exist.
	FindHotel(ctx context.Context, hotelID int64) (*rates.Hotel, error)

	// FindRooms returns all rooms of the hotel.
	FindRooms(ctx context.Context, hotelID int64) ([]rates.Room, error)

	// FindNightlyPrices returns the price rows of a room for the nights in
	// [checkIn, checkOut), ordered by date ascending. The checkout night is
	// not included.
	FindNightlyPrices(ctx context.Context, roomID int64, checkIn, checkOut rates.Date) ([]rates.NightlyPrice, error)

	// FindFlatCharges returns the hotel's flat surcharges.
	FindFlatCharges(ctx context.Context, hotelID int64) ([]rates.FlatCharge, error)

	// FindPercentageCharges returns the hotel's percentage surcharges.
	FindPercentageCharges(ctx context.Context, hotelID int64) ([]rates.PercentageCharge, error)
}
