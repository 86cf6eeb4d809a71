package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"booking-api/internal/domain/problem"
	"booking-api/internal/domain/rates"
	"booking-api/internal/ports"
	"booking-api/internal/shared/logger"
)

var testLog = logger.NewLogger("test")

// fakeRates serves the reference scenario: Hotel 1 "A" (VAT 0.1, EUR) with
// rooms R1/R2 priced over 2022-04-01..03, flat ONCE 25 + PER_NIGHT 5 and a
// 10% FIRST_NIGHT charge.
type fakeRates struct {
	hotels  map[int64]rates.Hotel
	rooms   map[int64][]rates.Room
	nightly map[int64][]rates.NightlyPrice
	flat    map[int64][]rates.FlatCharge
	pct     map[int64][]rates.PercentageCharge

	priceLookups int
	failWith     error
}

func (f *fakeRates) FindHotel(_ context.Context, hotelID int64) (*rates.Hotel, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	h, ok := f.hotels[hotelID]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (f *fakeRates) FindRooms(_ context.Context, hotelID int64) ([]rates.Room, error) {
	return f.rooms[hotelID], nil
}

func (f *fakeRates) FindNightlyPrices(_ context.Context, roomID int64, checkIn, checkOut rates.Date) ([]rates.NightlyPrice, error) {
	f.priceLookups++
	var out []rates.NightlyPrice
	for _, n := range f.nightly[roomID] {
		if !n.Date.Time.Before(checkIn.Time) && n.Date.Time.Before(checkOut.Time) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeRates) FindFlatCharges(_ context.Context, hotelID int64) ([]rates.FlatCharge, error) {
	return f.flat[hotelID], nil
}

func (f *fakeRates) FindPercentageCharges(_ context.Context, hotelID int64) ([]rates.PercentageCharge, error) {
	return f.pct[hotelID], nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) rates.Date {
	d, err := rates.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func nightlyRow(roomID int64, day, price string) rates.NightlyPrice {
	return rates.NightlyPrice{RoomID: roomID, Date: date(day), Price: dec(price)}
}

func referenceRepo() *fakeRates {
	return &fakeRates{
		hotels: map[int64]rates.Hotel{
			1: {ID: 1, Name: "A", VAT: dec("0.1"), Currency: "EUR", Timezone: "UTC"},
			2: {ID: 2, Name: "Empty", VAT: dec("0.2"), Currency: "USD", Timezone: "UTC"},
		},
		rooms: map[int64][]rates.Room{
			1: {{ID: 101, HotelID: 1, Name: "A1"}, {ID: 102, HotelID: 1, Name: "A2"}},
		},
		nightly: map[int64][]rates.NightlyPrice{
			101: {nightlyRow(101, "2022-04-01", "103"), nightlyRow(101, "2022-04-02", "99"), nightlyRow(101, "2022-04-03", "110")},
			102: {nightlyRow(102, "2022-04-01", "113"), nightlyRow(102, "2022-04-02", "109"), nightlyRow(102, "2022-04-03", "123")},
		},
		flat: map[int64][]rates.FlatCharge{
			1: {
				{HotelID: 1, ChargeType: rates.ChargeOnce, Price: dec("25")},
				{HotelID: 1, ChargeType: rates.ChargePerNight, Price: dec("5")},
			},
		},
		pct: map[int64][]rates.PercentageCharge{
			1: {{HotelID: 1, AppliedOn: rates.AppliedOnFirstNight, Percentage: dec("10")}},
		},
	}
}

func doSearch(svc *Service, hotelID int64, in, out string) ([]quoteView, error) {
	quotes, err := svc.Search(context.Background(), uuid.New(), ports.SearchRequest{
		HotelID: hotelID, CheckIn: date(in), CheckOut: date(out),
	})
	views := make([]quoteView, len(quotes))
	for i, q := range quotes {
		views[i] = quoteView{q.RoomID, q.Price.String(), q.Currency}
	}
	return views, err
}

type quoteView struct {
	roomID   int64
	price    string
	currency string
}

func TestSearchReferenceScenario(t *testing.T) {
	svc := New(referenceRepo(), testLog, 0)

	got, err := doSearch(svc, 1, "2022-04-01", "2022-04-03")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []quoteView{{101, "267.5", "EUR"}, {102, "290.5", "EUR"}}
	if len(got) != len(want) {
		t.Fatalf("quotes = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("quote %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSearchRejectsNonPositiveStay(t *testing.T) {
	svc := New(referenceRepo(), testLog, 0)

	for _, out := range []string{"2022-04-01", "2022-03-31"} {
		_, err := doSearch(svc, 1, "2022-04-01", out)
		p, ok := problem.From(err)
		if !ok || p.Kind != problem.KindInvalidInput {
			t.Fatalf("checkOut %s: err = %v, want InvalidInput", out, err)
		}
	}

	// one night is the minimum valid stay
	if _, err := doSearch(svc, 1, "2022-04-01", "2022-04-02"); err != nil {
		t.Fatalf("one-night stay: %v", err)
	}
}

func TestSearchUnknownHotel(t *testing.T) {
	svc := New(referenceRepo(), testLog, 0)
	_, err := doSearch(svc, 99, "2022-04-01", "2022-04-03")
	p, ok := problem.From(err)
	if !ok || p.Kind != problem.KindNotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestSearchHotelWithoutRooms(t *testing.T) {
	svc := New(referenceRepo(), testLog, 0)
	_, err := doSearch(svc, 2, "2022-04-01", "2022-04-03")
	p, ok := problem.From(err)
	if !ok || p.Kind != problem.KindNotAvailable {
		t.Fatalf("err = %v, want NotAvailable", err)
	}
}

func TestSearchExcludesPartiallyPricedRooms(t *testing.T) {
	repo := referenceRepo()
	// knock out one night of room 102
	repo.nightly[102] = repo.nightly[102][:1]
	svc := New(repo, testLog, 0)

	got, err := doSearch(svc, 1, "2022-04-01", "2022-04-03")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].roomID != 101 {
		t.Fatalf("quotes = %+v, want only room 101", got)
	}
}

func TestSearchAllRoomsIncomplete(t *testing.T) {
	repo := referenceRepo()
	repo.nightly[101] = nil                   // zero coverage
	repo.nightly[102] = repo.nightly[102][:1] // partial coverage
	svc := New(repo, testLog, 0)

	_, err := doSearch(svc, 1, "2022-04-01", "2022-04-03")
	p, ok := problem.From(err)
	if !ok || p.Kind != problem.KindNotAvailable {
		t.Fatalf("err = %v, want NotAvailable", err)
	}
}

func TestSearchMemoizesIdenticalRequests(t *testing.T) {
	repo := referenceRepo()
	svc := New(repo, testLog, time.Minute)

	if _, err := doSearch(svc, 1, "2022-04-01", "2022-04-03"); err != nil {
		t.Fatalf("first search: %v", err)
	}
	lookups := repo.priceLookups
	if _, err := doSearch(svc, 1, "2022-04-01", "2022-04-03"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if repo.priceLookups != lookups {
		t.Fatalf("second identical search recomputed (%d -> %d lookups)", lookups, repo.priceLookups)
	}

	// a different window misses the cache
	if _, err := doSearch(svc, 1, "2022-04-01", "2022-04-02"); err != nil {
		t.Fatalf("third search: %v", err)
	}
	if repo.priceLookups == lookups {
		t.Fatal("different request served from cache")
	}
}

func TestSearchCacheExpires(t *testing.T) {
	repo := referenceRepo()
	svc := New(repo, testLog, 20*time.Millisecond)

	if _, err := doSearch(svc, 1, "2022-04-01", "2022-04-03"); err != nil {
		t.Fatalf("first search: %v", err)
	}
	lookups := repo.priceLookups

	time.Sleep(40 * time.Millisecond)
	if _, err := doSearch(svc, 1, "2022-04-01", "2022-04-03"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if repo.priceLookups == lookups {
		t.Fatal("expired entry still served from cache")
	}
}

func TestSearchPropagatesRepositoryErrors(t *testing.T) {
	repo := referenceRepo()
	repo.failWith = errors.New("connection refused")
	svc := New(repo, testLog, 0)

	_, err := doSearch(svc, 1, "2022-04-01", "2022-04-03")
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := problem.From(err); ok {
		t.Fatalf("infrastructure failure classified as a business problem: %v", err)
	}
}
