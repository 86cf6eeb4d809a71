package booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	domain "booking-api/internal/domain/booking"
	"booking-api/internal/domain/problem"
	"booking-api/internal/ports"
	"booking-api/internal/shared/logger"
)

// Service implements ports.BookingReserver.
//
// A booking only goes through when it matches a freshly recomputed
// availability quote: same room, same currency, exactly the same decimal
// price. Validation passing, the booking event is published once and must be
// acknowledged and routed by the broker.
type Service struct {
	availability ports.AvailabilitySearcher
	publisher    ports.EventPublisher
	logger       *logger.Logger
}

var _ ports.BookingReserver = (*Service)(nil)

// New creates the booking service over the availability searcher and the
// event publisher.
func New(availability ports.AvailabilitySearcher, publisher ports.EventPublisher, log *logger.Logger) *Service {
	return &Service{availability: availability, publisher: publisher, logger: log}
}

// Reserve runs the single-pass booking flow: recompute quotes, check
// currency, check price, publish. The correlation id becomes the booking id
// and the message correlation id. Exactly one publish attempt; retries, if
// any, belong to the caller.
func (service *Service) Reserve(ctx context.Context, correlationID uuid.UUID, req domain.Request) (domain.Confirmation, error) {
	service.logger.Debug(ctx, "booking_received", req.String(), nil)

	// availability may have changed since the caller's search; NotFound and
	// NotAvailable propagate untouched
	quotes, err := service.availability.Search(ctx, correlationID, ports.SearchRequest{
		HotelID:  req.HotelID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
	})
	if err != nil {
		return domain.Confirmation{}, err
	}

	currencyMatches := false
	priceMatches := false
	for _, quote := range quotes {
		if quote.RoomID != req.RoomID {
			continue
		}
		if quote.Currency == req.Currency {
			currencyMatches = true
		}
		if quote.Price.Equal(req.Price) {
			priceMatches = true
		}
	}
	if !currencyMatches {
		return domain.Confirmation{}, problem.InvalidInput("Currency does not match hotel requirements.")
	}
	if !priceMatches {
		return domain.Confirmation{}, problem.InvalidInput(fmt.Sprintf(
			"Price does not match the availability quote for room: %d", req.RoomID))
	}

	body, err := json.Marshal(domain.Event{BookingID: correlationID, BookingRequest: req})
	if err != nil {
		return domain.Confirmation{}, fmt.Errorf("encode booking event: %w", err)
	}

	outcome, err := service.publisher.Publish(ctx, correlationID, body)
	if err != nil {
		return domain.Confirmation{}, problem.BadGateway("Message was not acknowledged by the broker.", err)
	}
	if !outcome.Acked {
		return domain.Confirmation{}, problem.BadGateway("Message was not acknowledged by the broker.")
	}
	// an acked message can still bounce off a misconfigured topology
	if outcome.Returned {
		return domain.Confirmation{}, problem.BadGateway("Message was returned by the broker.")
	}

	service.logger.Info(ctx, "booking_published", "booking event acknowledged by the broker",
		map[string]any{"booking_id": correlationID.String(), "hotel_id": req.HotelID, "room_id": req.RoomID})

	return domain.Confirmation{BookingID: correlationID}, nil
}
