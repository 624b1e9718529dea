package handler

import (
	"encoding/json"
	"net/http"

	"campusmeal/internal/mw"
	"campusmeal/internal/service"
)

type balanceResponse struct {
	Current float64 `json:"current"`
}

func GetBalanceHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		balance, err := authSvc.Balance(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, balanceResponse{Current: balance})
	}
}

type topUpRequest struct {
	Amount float64 `json:"amount"`
}

func TopUpHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req topUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := authSvc.TopUp(r.Context(), userID, req.Amount); err != nil {
			writeError(w, err)
			return
		}

		balance, err := authSvc.Balance(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, balanceResponse{Current: balance})
	}
}
