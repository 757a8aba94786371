package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mapcrown/mapcrown/internal/app"
	"github.com/mapcrown/mapcrown/internal/dataset"
	"github.com/mapcrown/mapcrown/internal/quiz"
)

type errorBody struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// writeError maps domain errors to status codes. Dataset problems carry a
// configuration hint.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *dataset.DataError
	switch {
	case errors.As(err, &de):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: de.Error(), Hint: de.Hint()})
		return
	case errors.Is(err, app.ErrUnknownFeature), errors.Is(err, app.ErrNoMatch):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	case errors.Is(err, app.ErrNoSelection), errors.Is(err, app.ErrNoFacts),
		errors.Is(err, app.ErrNoDaily), errors.Is(err, quiz.ErrNoQuestion):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
		return
	case errors.Is(err, quiz.ErrDailyComplete), errors.Is(err, app.ErrDailyExpired):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
		return
	case errors.Is(err, quiz.ErrInvalidChoice), errors.Is(err, app.ErrDailyViaChallenge):
		badRequest(w, err.Error())
		return
	case errors.Is(err, quiz.ErrPoolExhausted):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}

	slog.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func logRequest(r *http.Request, route string, status int, d time.Duration) {
	slog.Debug("http request",
		"method", r.Method,
		"route", route,
		"path", r.URL.Path,
		"status", status,
		"duration_ms", d.Milliseconds(),
		"request_id", middleware.GetReqID(r.Context()),
	)
}
