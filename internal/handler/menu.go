package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusmeal/internal/model"
	"campusmeal/internal/service"
)

type restaurantResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OpeningHour int    `json:"opening_hour"`
	ClosingHour int    `json:"closing_hour"`
}

func toRestaurantResponse(r *model.Restaurant) restaurantResponse {
	return restaurantResponse{
		ID:          r.ID,
		Name:        r.Name,
		OpeningHour: r.OpeningHour,
		ClosingHour: r.ClosingHour,
	}
}

func ListRestaurantsHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurants := menuSvc.ListRestaurants()
		out := make([]restaurantResponse, 0, len(restaurants))
		for _, rest := range restaurants {
			out = append(out, toRestaurantResponse(rest))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type createRestaurantRequest struct {
	Name        string `json:"name"`
	OpeningHour int    `json:"opening_hour"`
	ClosingHour int    `json:"closing_hour"`
}

func CreateRestaurantHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRestaurantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		restaurant, err := menuSvc.CreateRestaurant(req.Name, req.OpeningHour, req.ClosingHour)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRestaurantResponse(restaurant))
	}
}

func GetMenuHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		menu, err := menuSvc.GetMenu(chi.URLParam(r, "restaurantID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, menu)
	}
}

type addDishRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

func AddDishHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addDishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		dish, err := menuSvc.AddDish(chi.URLParam(r, "restaurantID"), req.Name, req.Category, req.Price)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, dish)
	}
}

func RemoveDishHandler(menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := menuSvc.RemoveDish(chi.URLParam(r, "restaurantID"), chi.URLParam(r, "dishID"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
