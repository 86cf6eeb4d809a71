package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"booking-api/internal/domain/booking"
	"booking-api/internal/domain/problem"
	"booking-api/internal/domain/rates"
	"booking-api/internal/ports"
	"booking-api/internal/shared/logger"
)

// Service implements ports.AvailabilitySearcher: one quote per room of the
// hotel that has a nightly price for every night of the stay.
type Service struct {
	repo   ports.RateRepository
	logger *logger.Logger
	cache  *quoteCache
}

var _ ports.AvailabilitySearcher = (*Service)(nil)

// New creates the availability service. cacheTTL bounds how long an identical
// search is answered from memory; zero disables memoization.
func New(repo ports.RateRepository, log *logger.Logger, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, logger: log, cache: newQuoteCache(cacheTTL)}
}

// Search resolves the quotes for one hotel and stay window.
//
// Read-only. Steps run strictly in order: hotel, charges, rooms, per-room
// price window, pricing. Rooms without complete nightly coverage are dropped
// whole, never partially priced; when nothing survives the filter the search
// is NotAvailable.
func (service *Service) Search(ctx context.Context, correlationID uuid.UUID, req ports.SearchRequest) ([]booking.Quote, error) {
	if !req.CheckIn.Time.Before(req.CheckOut.Time) {
		return nil, problem.InvalidInput("Check-in date should be at least one day before check-out date.")
	}

	if quotes, ok := service.cache.get(req); ok {
		service.logger.Debug(ctx, "availability_cache_hit", "search answered from cache",
			map[string]any{"hotel_id": req.HotelID, "check_in": req.CheckIn.String(), "check_out": req.CheckOut.String()})
		return quotes, nil
	}

	hotel, err := service.repo.FindHotel(ctx, req.HotelID)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, problem.NotFound(fmt.Sprintf("Hotel not found: %d", req.HotelID))
	}

	// charges are per hotel; load once and share across rooms
	flatCharges, err := service.repo.FindFlatCharges(ctx, req.HotelID)
	if err != nil {
		return nil, err
	}
	percentageCharges, err := service.repo.FindPercentageCharges(ctx, req.HotelID)
	if err != nil {
		return nil, err
	}

	rooms, err := service.repo.FindRooms(ctx, req.HotelID)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, problem.NotAvailable(fmt.Sprintf("No rooms available for hotel: %d", req.HotelID))
	}

	nights := rates.Nights(req.CheckIn, req.CheckOut)
	quotes := make([]booking.Quote, 0, len(rooms))
	for _, room := range rooms {
		nightly, err := service.repo.FindNightlyPrices(ctx, room.ID, req.CheckIn, req.CheckOut)
		if err != nil {
			return nil, err
		}
		if len(nightly) != nights {
			// partial coverage excludes the room entirely
			service.logger.Debug(ctx, "room_filtered", "room lacks complete nightly pricing",
				map[string]any{"room_id": room.ID, "priced_nights": len(nightly), "stay_nights": nights})
			continue
		}

		total, err := rates.CalculateTotal(nightly, flatCharges, percentageCharges, hotel.VAT)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, booking.Quote{
			HotelID:  req.HotelID,
			RoomID:   room.ID,
			Price:    total,
			Currency: hotel.Currency,
		})
	}

	if len(quotes) == 0 {
		return nil, problem.NotAvailable(fmt.Sprintf(
			"No room pricing available for nights between: %s and %s.", req.CheckIn, req.CheckOut))
	}

	service.cache.put(req, quotes)

	service.logger.Debug(ctx, "availability_computed", "search computed",
		map[string]any{"hotel_id": req.HotelID, "quotes": len(quotes), "correlation_id": correlationID.String()})

	return quotes, nil
}
