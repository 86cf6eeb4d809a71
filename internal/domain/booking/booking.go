package booking

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"booking-api/internal/domain/rates"
)

func init() {
	// Quote and event prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const obscured = "****"

// Quote is the computed total price of one room for a requested stay.
// Ephemeral: produced per search, valid only while the underlying rates hold.
type Quote struct {
	HotelID  int64           `json:"hotelId"`
	RoomID   int64           `json:"roomId"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// Guest identifies the person staying. Every textual rendering is redacted.
type Guest struct {
	Name      string     `json:"name"`
	Surname   string     `json:"surname"`
	Birthdate rates.Date `json:"birthdate"`
}

func (g Guest) String() string {
	return "Guest(name=" + obscured + ", surname=" + obscured + ", birthdate=" + obscured + ")"
}

// Payment carries card details. Every textual rendering is redacted.
type Payment struct {
	CardHolder  string `json:"cardHolder"`
	CardNumber  string `json:"cardNumber"`
	CVV         string `json:"cvv"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
}

func (p Payment) String() string {
	return "Payment(cardHolder=" + obscured + ", cardNumber=" + obscured + ", cvv=" + obscured +
		", expiryMonth=" + obscured + ", expiryYear=" + obscured + ")"
}

// Request is an inbound booking: the quote the caller wants to redeem plus
// guest and payment details.
type Request struct {
	HotelID  int64           `json:"hotelId"`
	RoomID   int64           `json:"roomId"`
	CheckIn  rates.Date      `json:"checkIn"`
	CheckOut rates.Date      `json:"checkOut"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Guest    Guest           `json:"guest"`
	Payment  Payment         `json:"payment"`
}

// String renders the request for logs with guest and payment obscured.
func (r Request) String() string {
	return "Request(hotelId=" + strconv.FormatInt(r.HotelID, 10) + ", roomId=" + strconv.FormatInt(r.RoomID, 10) +
		", checkIn=" + r.CheckIn.String() + ", checkOut=" + r.CheckOut.String() +
		", price=" + r.Price.String() + ", currency=" + r.Currency +
		", guest=" + r.Guest.String() + ", payment=" + r.Payment.String() + ")"
}

// Event is the message published to the broker once a booking is validated.
// The correlation id of the message equals BookingID.
type Event struct {
	BookingID      uuid.UUID `json:"bookingId"`
	BookingRequest Request   `json:"bookingRequest"`
}

// Confirmation is the only payload returned to the caller on success.
type Confirmation struct {
	BookingID uuid.UUID `json:"bookingId"`
}
