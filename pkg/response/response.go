package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/kapee/pkg/apperr"
	"github.com/shashiranjanraj/kapee/pkg/logger"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 JSON response with data.
func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

// Message sends a 200 response carrying only a message.
func Message(w http.ResponseWriter, message string) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Message: message})
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Fail translates err into its client-facing status and message. Errors that
// map to 5xx are logged with their cause; the cause is never sent.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed",
			"kind", string(kind),
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}
	Error(w, status, apperr.Message(err))
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message ...string) {
	Error(w, http.StatusUnauthorized, first(message, "Unauthorized"))
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message ...string) {
	Error(w, http.StatusForbidden, first(message, "Forbidden"))
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}

func first(messages []string, fallback string) string {
	if len(messages) > 0 && messages[0] != "" {
		return messages[0]
	}
	return fallback
}
