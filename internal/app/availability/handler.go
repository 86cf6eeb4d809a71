package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"booking-api/internal/app/web"
	"booking-api/internal/domain/problem"
	"booking-api/internal/domain/rates"
	"booking-api/internal/ports"
	"booking-api/internal/shared/logger"
)

// HTTPHandler adapts HTTP requests to the availability searcher.
type HTTPHandler struct {
	svc    ports.AvailabilitySearcher
	logger *logger.Logger
}

// NewHTTPHandler wires an HTTP handler around the searcher.
func NewHTTPHandler(svc ports.AvailabilitySearcher, logger *logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger}
}

// Register mounts the availability routes on the provided mux. The search is
// reachable as POST with a JSON body or as GET with query parameters.
func (handler *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /availability", func(w http.ResponseWriter, r *http.Request) {
		handler.handleSearchBody(r.Context(), w, r)
	})
	mux.HandleFunc("GET /availability", func(w http.ResponseWriter, r *http.Request) {
		handler.handleSearchQuery(r.Context(), w, r)
	})
}

type searchRequest struct {
	HotelID  int64      `json:"hotelId"`
	CheckIn  rates.Date `json:"checkIn"`
	CheckOut rates.Date `json:"checkOut"`
}

func (handler *HTTPHandler) handleSearchBody(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		web.WriteError(ctx, handler.logger, w, r, problem.InvalidInput("Content-Type must be application/json"))
		return
	}

	var req searchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		web.WriteError(ctx, handler.logger, w, r, problem.InvalidInput("invalid JSON: "+err.Error(), err))
		return
	}

	handler.search(ctx, w, r, req)
}

func (handler *HTTPHandler) handleSearchQuery(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hotelID, err := strconv.ParseInt(q.Get("hotelId"), 10, 64)
	if err != nil {
		web.WriteError(ctx, handler.logger, w, r, problem.InvalidInput("hotelId must be an integer", err))
		return
	}
	checkIn, err := rates.ParseDate(q.Get("checkIn"))
	if err != nil {
		web.WriteError(ctx, handler.logger, w, r, problem.InvalidInput(err.Error(), err))
		return
	}
	checkOut, err := rates.ParseDate(q.Get("checkOut"))
	if err != nil {
		web.WriteError(ctx, handler.logger, w, r, problem.InvalidInput(err.Error(), err))
		return
	}

	handler.search(ctx, w, r, searchRequest{HotelID: hotelID, CheckIn: checkIn, CheckOut: checkOut})
}

func (handler *HTTPHandler) search(ctx context.Context, w http.ResponseWriter, r *http.Request, req searchRequest) {
	correlationID := web.CorrelationFrom(ctx)

	handler.logger.Debug(ctx, "availability_requested", "availability search received",
		map[string]any{"hotel_id": req.HotelID, "check_in": req.CheckIn.String(), "check_out": req.CheckOut.String()})

	quotes, err := handler.svc.Search(ctx, correlationID, ports.SearchRequest{
		HotelID:  req.HotelID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
	})
	if err != nil {
		web.WriteError(ctx, handler.logger, w, r, err)
		return
	}

	web.WriteJSON(ctx, handler.logger, w, http.StatusOK, quotes)
}
