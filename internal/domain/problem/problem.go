package problem

import (
	"errors"
	"net/http"
	"time"
)

// Kind classifies a business failure for transport mapping.
type Kind int

const (
	// KindNotFound means a referenced entity does not exist (404).
	KindNotFound Kind = iota
	// KindNotAvailable means the entity exists but has no satisfying data (409).
	KindNotAvailable
	// KindInvalidInput means the request violates a business rule (400).
	KindInvalidInput
	// KindBadGateway means a downstream broker failure (502).
	KindBadGateway
)

// Problem is a classified business error. Services return the specific kind;
// the HTTP boundary extracts it with errors.As and renders a problem response.
// Anything that is not a Problem renders as a generic 500 with no detail.
type Problem struct {
	Kind      Kind
	Message   string
	Timestamp time.Time
	cause     error
}

func newProblem(kind Kind, msg string, cause ...error) *Problem {
	p := &Problem{Kind: kind, Message: msg, Timestamp: time.Now().UTC()}
	if len(cause) > 0 {
		p.cause = cause[0]
	}
	return p
}

func NotFound(msg string, cause ...error) *Problem     { return newProblem(KindNotFound, msg, cause...) }
func NotAvailable(msg string, cause ...error) *Problem { return newProblem(KindNotAvailable, msg, cause...) }
func InvalidInput(msg string, cause ...error) *Problem { return newProblem(KindInvalidInput, msg, cause...) }
func BadGateway(msg string, cause ...error) *Problem   { return newProblem(KindBadGateway, msg, cause...) }

func (p *Problem) Error() string { return p.Message }

func (p *Problem) Unwrap() error { return p.cause }

// Status maps the kind to its HTTP status code.
func (p *Problem) Status() int {
	switch p.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindNotAvailable:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// From extracts a Problem from an error chain.
func From(err error) (*Problem, bool) {
	var p *Problem
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}
