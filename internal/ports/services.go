package ports

import (
	"context"

	"github.com/google/uuid"

	"booking-api/internal/domain/booking"
	"booking-api/internal/domain/rates"
)

// SearchRequest identifies one availability search. It is also the
// memoization key: identical requests within the cache window return the
// same quote sequence without recomputation.
type SearchRequest struct {
	HotelID  int64
	CheckIn  rates.Date
	CheckOut rates.Date
}

// AvailabilitySearcher produces one quote per room of the hotel that has
// complete nightly pricing for the whole stay.
//
// Failure kinds: InvalidInput when checkIn >= checkOut, NotFound when the
// hotel does not exist, NotAvailable when it has no rooms or no room has
// complete price coverage.
type AvailabilitySearcher interface {
	Search(ctx context.Context, correlationID uuid.UUID, req SearchRequest) ([]booking.Quote, error)
}

// BookingReserver validates a booking against a freshly recomputed quote
// and publishes the booking event. The correlation id becomes the booking id.
type BookingReserver interface {
	Reserve(ctx context.Context, correlationID uuid.UUID, req booking.Request) (booking.Confirmation, error)
}
