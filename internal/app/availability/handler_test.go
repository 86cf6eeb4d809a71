package availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"booking-api/internal/domain/booking"
	"booking-api/internal/domain/problem"
	"booking-api/internal/ports"
)

type fakeSearcher struct {
	req    ports.SearchRequest
	quotes []booking.Quote
	err    error
}

func (f *fakeSearcher) Search(_ context.Context, _ uuid.UUID, req ports.SearchRequest) ([]booking.Quote, error) {
	f.req = req
	return f.quotes, f.err
}

func newMux(svc ports.AvailabilitySearcher) *http.ServeMux {
	mux := http.NewServeMux()
	NewHTTPHandler(svc, testLog).Register(mux)
	return mux
}

func TestHandlerPostBody(t *testing.T) {
	svc := &fakeSearcher{quotes: []booking.Quote{{HotelID: 1, RoomID: 101, Price: dec("267.5"), Currency: "EUR"}}}
	mux := newMux(svc)

	body := `{"hotelId": 1, "checkIn": "2022-04-01", "checkOut": "2022-04-03"}`
	req := httptest.NewRequest(http.MethodPost, "/availability", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if svc.req.HotelID != 1 || svc.req.CheckIn.String() != "2022-04-01" || svc.req.CheckOut.String() != "2022-04-03" {
		t.Fatalf("service saw %+v", svc.req)
	}
	got := rec.Body.String()
	if !strings.Contains(got, `"price":267.5`) || !strings.Contains(got, `"roomId":101`) || !strings.Contains(got, `"currency":"EUR"`) {
		t.Fatalf("response body: %s", got)
	}
}

func TestHandlerGetQuery(t *testing.T) {
	svc := &fakeSearcher{quotes: []booking.Quote{}}
	mux := newMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/availability?hotelId=7&checkIn=2022-04-01&checkOut=2022-04-02", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if svc.req.HotelID != 7 || svc.req.CheckIn.String() != "2022-04-01" {
		t.Fatalf("service saw %+v", svc.req)
	}
}

func TestHandlerRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"malformed json", http.MethodPost, "/availability", `{"hotelId": `},
		{"unknown field", http.MethodPost, "/availability", `{"hotelId": 1, "checkIn": "2022-04-01", "checkOut": "2022-04-03", "rooms": 2}`},
		{"bad date format", http.MethodPost, "/availability", `{"hotelId": 1, "checkIn": "01-04-2022", "checkOut": "2022-04-03"}`},
		{"non-integer hotel", http.MethodGet, "/availability?hotelId=abc&checkIn=2022-04-01&checkOut=2022-04-03", ""},
		{"bad query date", http.MethodGet, "/availability?hotelId=1&checkIn=yesterday&checkOut=2022-04-03", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeSearcher{}
			mux := newMux(svc)
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tc.method, tc.target, nil)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
			}
		})
	}
}

func TestHandlerMapsProblems(t *testing.T) {
	svc := &fakeSearcher{err: problem.NotAvailable("No rooms available for hotel: 1")}
	mux := newMux(svc)

	req := httptest.NewRequest(http.MethodGet, "/availability?hotelId=1&checkIn=2022-04-01&checkOut=2022-04-03", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No rooms available for hotel: 1") {
		t.Fatalf("body: %s", rec.Body)
	}
}
