package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/luravie/storefront/internal/platform/requestctx"
)

const maxBodyBytes = 1 << 20

// ErrTrailingData is returned by DecodeJSON when the body holds more than one document.
var ErrTrailingData = errors.New("httpx: trailing data after JSON body")

// Error is the failure answer of the JSON API. Details are merged into the
// top level of the body next to error, message and status.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewError builds an Error. A zero status means 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{Code: oneLine(code, 80), Message: oneLine(message, 512), Status: status}
}

// WithDetails returns a copy of e carrying details.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	e.Details = merged
	return e
}

func (e Error) Error() string {
	return e.Code + ": " + e.Message
}

type envelope struct {
	err       Error
	requestID string
	traceID   string
}

func (e envelope) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(e.err.Details)+5)
	for k, v := range e.err.Details {
		body[k] = v
	}
	body["error"] = e.err.Code
	body["message"] = e.err.Message
	body["status"] = e.err.Status
	if e.requestID != "" {
		body["request_id"] = e.requestID
	}
	if e.traceID != "" {
		body["trace_id"] = e.traceID
	}
	return json.Marshal(body)
}

// WriteError answers with err, tagged with the request and trace ids of ctx.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	if err.Status == 0 {
		err.Status = http.StatusInternalServerError
	}
	WriteJSON(w, err.Status, envelope{
		err:       err,
		requestID: oneLine(middleware.GetReqID(ctx), 80),
		traceID:   oneLine(requestctx.TraceID(ctx), 64),
	})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads one JSON document of at most 1 MiB into dst. Unknown
// fields and trailing data are errors.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return ErrTrailingData
	}
	return nil
}

func oneLine(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(value))
	if utf8.RuneCountInString(value) > limit {
		value = string([]rune(value)[:limit])
	}
	return value
}
