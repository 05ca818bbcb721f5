// Package httputil holds the JSON envelope and request helpers shared by
// every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"vidtube/apperr"
	"vidtube/logger"
)

// DefaultBodyLimit is the default maximum JSON request body size (1 MB).
const DefaultBodyLimit int64 = 1 << 20

// Envelope wraps every successful response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Code       string `json:"code"`
	Details    any    `json:"details,omitempty"`
	Success    bool   `json:"success"`
}

// WriteJSON sends a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().WithError(err).Warn("failed to encode response")
	}
}

// Respond writes data inside the success envelope.
func Respond(w http.ResponseWriter, status int, data any, message string) {
	WriteJSON(w, status, Envelope{StatusCode: status, Data: data, Message: message, Success: status < 400})
}

// WriteError maps err to its status and writes the error envelope. Causes of
// internal errors are logged and never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	body := ErrorBody{StatusCode: status, Success: false}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Error = ae.Message
		body.Code = ae.Code()
		body.Details = ae.Details
	}
	if status >= 500 {
		fields := logrus.Fields{"status": status, "path": r.URL.Path}
		if id := middleware.GetReqID(r.Context()); id != "" {
			fields["requestId"] = id
		}
		logger.L().WithFields(fields).WithError(err).Error("request failed")
		if ae == nil || ae.Kind == apperr.KindInternal {
			body.Error = "Internal server error"
			body.Code = (&apperr.Error{Kind: apperr.KindInternal}).Code()
		}
	}
	WriteJSON(w, status, body)
}

// MaxBody wraps r.Body with a size limit to prevent oversized payloads.
func MaxBody(w http.ResponseWriter, r *http.Request, n int64) {
	r.Body = http.MaxBytesReader(w, r.Body, n)
}

// DecodeJSON reads a size-limited JSON body into v. An empty body leaves v
// untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	MaxBody(w, r, DefaultBodyLimit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}
