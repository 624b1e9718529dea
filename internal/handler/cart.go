package handler

import (
	"encoding/json"
	"net/http"

	"campusmeal/internal/model"
	"campusmeal/internal/mw"
	"campusmeal/internal/service"
)

type addCartItemRequest struct {
	RestaurantID string `json:"restaurant_id"`
	DishID       string `json:"dish_id"`
	Quantity     int    `json:"quantity"`
}

type cartResponse struct {
	RestaurantID string           `json:"restaurant_id,omitempty"`
	Items        []model.CartItem `json:"items"`
	Total        float64          `json:"total"`
}

func toCartResponse(c *model.Cart) cartResponse {
	if c == nil {
		return cartResponse{Items: []model.CartItem{}}
	}
	return cartResponse{RestaurantID: c.RestaurantID, Items: c.Items, Total: c.Total()}
}

func AddCartItemHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req addCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		cart, err := cartSvc.AddItem(userID, req.RestaurantID, req.DishID, req.Quantity)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCartResponse(cart))
	}
}

func GetCartHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, toCartResponse(cartSvc.Get(userID)))
	}
}

func ClearCartHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		cartSvc.Clear(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
