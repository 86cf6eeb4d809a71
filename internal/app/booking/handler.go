package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"booking-api/internal/app/web"
	domain "booking-api/internal/domain/booking"
	"booking-api/internal/domain/problem"
	"booking-api/internal/ports"
	"booking-api/internal/shared/logger"
)

// HTTPHandler adapts HTTP requests to the booking reserver.
type HTTPHandler struct {
	svc    ports.BookingReserver
	logger *logger.Logger
}

// NewHTTPHandler wires an HTTP handler around the reserver.
func NewHTTPHandler(svc ports.BookingReserver, logger *logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, logger: logger}
}

// Register mounts the POST /booking route on the provided mux.
func (handler *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /booking", func(w http.ResponseWriter, r *http.Request) {
		handler.handleReserve(r.Context(), w, r)
	})
}

func (handler *HTTPHandler) handleReserve(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		web.WriteError(ctx, handler.logger, w, r, problem.InvalidInput("Content-Type must be application/json"))
		return
	}

	var req domain.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		web.WriteError(ctx, handler.logger, w, r, problem.InvalidInput("invalid JSON: "+err.Error(), err))
		return
	}

	correlationID := web.CorrelationFrom(ctx)

	confirmation, err := handler.svc.Reserve(ctx, correlationID, req)
	if err != nil {
		web.WriteError(ctx, handler.logger, w, r, err)
		return
	}

	// accepted: the event is on its way, nothing is persisted here
	web.WriteJSON(ctx, handler.logger, w, http.StatusAccepted, confirmation)
}
