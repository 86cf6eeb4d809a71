// Package web carries the cross-cutting HTTP pieces: the correlation-id
// middleware and the problem response contract shared by all handlers.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"booking-api/internal/domain/problem"
	"booking-api/internal/shared/logger"
)

// CorrelationHeader is the single identifier tying an HTTP request to its
// log lines, its response, and the event it may publish.
const CorrelationHeader = "X-Correlation-Id"

type ctxKey string

const correlationKey ctxKey = "correlation"

// WithCorrelation wraps a handler so every request carries a correlation id:
// taken from the request header when present and parseable, generated
// otherwise. The id is set on the response header, the logger context, and
// the request context for handlers to pass into services explicitly.
func WithCorrelation(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID, err := uuid.Parse(r.Header.Get(CorrelationHeader))
		if err != nil {
			correlationID = uuid.New()
		}

		ctx := log.WithCorrelationID(r.Context(), correlationID.String())
		ctx = context.WithValue(ctx, correlationKey, correlationID)

		w.Header().Set(CorrelationHeader, correlationID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationFrom returns the request's correlation id. Outside the
// middleware (tests, direct calls) it generates one.
func CorrelationFrom(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(correlationKey).(uuid.UUID); ok {
		return id
	}
	return uuid.New()
}

// WithConcurrencyLimit wraps a handler with a semaphore-based limiter. It
// blocks until capacity is available, which provides natural backpressure.
func WithConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sem <- struct{}{}        // acquire
		defer func() { <-sem }() // release
		next.ServeHTTP(w, r)
	})
}

// ProblemResponse is the JSON body of every business failure.
type ProblemResponse struct {
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Status        int       `json:"status"`
	Detail        string    `json:"detail"`
	CorrelationID string    `json:"correlationId"`
	Timestamp     time.Time `json:"timestamp"`
}

// WriteError renders err: a classified problem gets its mapped status and
// message, anything else a 500 with no business detail leaked.
func WriteError(ctx context.Context, log *logger.Logger, w http.ResponseWriter, r *http.Request, err error) {
	p, ok := problem.From(err)
	if !ok {
		log.Error(ctx, "request_failed", "unclassified failure", err)
		WriteJSON(ctx, log, w, http.StatusInternalServerError, ProblemResponse{
			Type:          r.URL.String(),
			Title:         http.StatusText(http.StatusInternalServerError),
			Status:        http.StatusInternalServerError,
			Detail:        "internal error",
			CorrelationID: CorrelationFrom(ctx).String(),
			Timestamp:     time.Now().UTC(),
		})
		return
	}

	log.Error(ctx, "request_rejected", p.Message, err)
	WriteJSON(ctx, log, w, p.Status(), ProblemResponse{
		Type:          r.URL.String(),
		Title:         http.StatusText(p.Status()),
		Status:        p.Status(),
		Detail:        p.Message,
		CorrelationID: CorrelationFrom(ctx).String(),
		Timestamp:     p.Timestamp,
	})
}

// WriteJSON encodes data and writes it with the given status.
func WriteJSON(ctx context.Context, log *logger.Logger, w http.ResponseWriter, status int, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		log.Error(ctx, "response_encode_failed", "failed to encode response", err)
		http.Error(w, `{"detail":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}
