package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"booking-api/internal/domain/rates"
	"booking-api/internal/ports"
)

// RatesRepo reads the rate catalog (hotels, rooms, prices, charges) with pgx.
// All queries are read-only; this process never writes to these tables.
//
// Money and VAT columns are NUMERIC in the DB. They are selected as ::text
// and parsed into decimals so no float conversion ever touches a price.
type RatesRepo struct {
	pool *pgxpool.Pool
}

// NewRatesRepo constructs a repository over the given pool.
func NewRatesRepo(pool *pgxpool.Pool) ports.RateRepository {
	return &RatesRepo{pool: pool}
}

var _ ports.RateRepository = (*RatesRepo)(nil)

func (r *RatesRepo) FindHotel(ctx context.Context, hotelID int64) (*rates.Hotel, error) {
	var (
		hotel rates.Hotel
		vat   string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, address, timezone, vat::text, currency
		FROM hotels
		WHERE id = $1
	`, hotelID).Scan(&hotel.ID, &hotel.Name, &hotel.Address, &hotel.Timezone, &vat, &hotel.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find hotel %d: %w", hotelID, err)
	}

	hotel.VAT, err = decimal.NewFromString(vat)
	if err != nil {
		return nil, fmt.Errorf("hotel %d vat %q: %w", hotelID, vat, err)
	}
	return &hotel, nil
}

func (r *RatesRepo) FindRooms(ctx context.Context, hotelID int64) ([]rates.Room, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, hotel_id, name, description, quantity
		FROM rooms
		WHERE hotel_id = $1
		ORDER BY id
	`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("find rooms of hotel %d: %w", hotelID, err)
	}
	defer rows.Close()

	var out []rates.Room
	for rows.Next() {
		var room rates.Room
		if err := rows.Scan(&room.ID, &room.HotelID, &room.Name, &room.Description, &room.Quantity); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func (r *RatesRepo) FindNightlyPrices(ctx context.Context, roomID int64, checkIn, checkOut rates.Date) ([]rates.NightlyPrice, error) {
	// [checkIn, checkOut): the checkout night is excluded from the window.
	rows, err := r.pool.Query(ctx, `
		SELECT room_id, date, quantity, price::text
		FROM prices
		WHERE room_id = $1 AND date >= $2 AND date < $3
		ORDER BY date
	`, roomID, checkIn.Time, checkOut.Time)
	if err != nil {
		return nil, fmt.Errorf("find prices of room %d: %w", roomID, err)
	}
	defer rows.Close()

	var out []rates.NightlyPrice
	for rows.Next() {
		var (
			night rates.NightlyPrice
			price string
		)
		if err := rows.Scan(&night.RoomID, &night.Date.Time, &night.Quantity, &price); err != nil {
			return nil, err
		}
		if night.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("room %d price %q: %w", roomID, price, err)
		}
		out = append(out, night)
	}
	return out, rows.Err()
}

func (r *RatesRepo) FindFlatCharges(ctx context.Context, hotelID int64) ([]rates.FlatCharge, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT hotel_id, description, charge_type, price::text
		FROM extra_charges_flat
		WHERE hotel_id = $1
	`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("find flat charges of hotel %d: %w", hotelID, err)
	}
	defer rows.Close()

	var out []rates.FlatCharge
	for rows.Next() {
		var (
			charge     rates.FlatCharge
			chargeType string
			price      string
		)
		if err := rows.Scan(&charge.HotelID, &charge.Description, &chargeType, &price); err != nil {
			return nil, err
		}
		charge.ChargeType = rates.ChargeType(chargeType)
		if charge.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("hotel %d flat charge %q: %w", hotelID, price, err)
		}
		out = append(out, charge)
	}
	return out, rows.Err()
}

func (r *RatesRepo) FindPercentageCharges(ctx context.Context, hotelID int64) ([]rates.PercentageCharge, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT hotel_id, description, applied_on, percentage::text
		FROM extra_charges_percentage
		WHERE hotel_id = $1
	`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("find percentage charges of hotel %d: %w", hotelID, err)
	}
	defer rows.Close()

	var out []rates.PercentageCharge
	for rows.Next() {
		var (
			charge     rates.PercentageCharge
			appliedOn  string
			percentage string
		)
		if err := rows.Scan(&charge.HotelID, &charge.Description, &appliedOn, &percentage); err != nil {
			return nil, err
		}
		charge.AppliedOn = rates.AppliedOn(appliedOn)
		if charge.Percentage, err = decimal.NewFromString(percentage); err != nil {
			return nil, fmt.Errorf("hotel %d percentage charge %q: %w", hotelID, percentage, err)
		}
		out = append(out, charge)
	}
	return out, rows.Err()
}
