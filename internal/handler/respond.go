package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"campusmeal/internal/model"
	"campusmeal/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses.
// Unrecognized errors are internal failures and get logged.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrCartEmpty):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrInsufficientCredit):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, service.ErrEntityNotFound), errors.Is(err, service.ErrSlotNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrLoginTaken),
		errors.Is(err, service.ErrSlotUnavailable),
		errors.Is(err, service.ErrActiveOrderExists),
		errors.Is(err, service.ErrCartConflict),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, model.ErrInvalidOrderState),
		errors.Is(err, model.ErrSlotAlreadyAssigned),
		errors.Is(err, model.ErrNoSlotAssigned),
		errors.Is(err, model.ErrOrderAlreadyConfirmed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrPaymentTimeout), errors.Is(err, model.ErrOrderExpired):
		http.Error(w, err.Error(), http.StatusGone)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
