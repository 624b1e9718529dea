package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"campusmeal/internal/model"
	"campusmeal/internal/service"
)

type slotResponse struct {
	ID                string    `json:"id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	MaxCapacity       int       `json:"max_capacity"`
	ReservedCount     int       `json:"reserved_count"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

func toSlotResponse(s *model.DeliverySlot) slotResponse {
	return slotResponse{
		ID:                s.ID,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		MaxCapacity:       s.MaxCapacity(),
		ReservedCount:     s.ReservedCount(),
		EstimatedDelivery: s.DeliveryTime(),
	}
}

// ListSlotsHandler returns the restaurant's available slots for a day;
// ?date=YYYY-MM-DD, defaulting to today.
func ListSlotsHandler(slotSvc *service.SlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := time.Now()
		if d := r.URL.Query().Get("date"); d != "" {
			parsed, err := time.ParseInLocation("2006-01-02", d, time.Local)
			if err != nil {
				http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = parsed
		}

		slots, err := slotSvc.AvailableSlots(chi.URLParam(r, "restaurantID"), date)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]slotResponse, 0, len(slots))
		for _, s := range slots {
			out = append(out, toSlotResponse(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type selectSlotRequest struct {
	SlotID string `json:"slot_id"`
}

func SelectSlotHandler(slotSvc *service.SlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		selection, err := slotSvc.SelectDeliverySlot(r.Context(), chi.URLParam(r, "orderID"), req.SlotID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, selection)
	}
}
