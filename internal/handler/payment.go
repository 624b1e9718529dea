package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusmeal/internal/service"
)

type paymentRequest struct {
	CardToken string `json:"card_token,omitempty"`
}

// PayOrderHandler runs the checkout flow. A declined payment is a 402
// with the structured result; timeouts are 410 because the order is
// expired by the time the caller hears about it.
func PayOrderHandler(checkoutSvc *service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		resp, err := checkoutSvc.ProcessPayment(r.Context(), chi.URLParam(r, "orderID"), req.CardToken)
		if err != nil {
			writeError(w, err)
			return
		}

		status := http.StatusOK
		if !resp.Success {
			status = http.StatusPaymentRequired
		}
		writeJSON(w, status, resp)
	}
}
