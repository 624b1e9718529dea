package service

import (
	"fmt"
	"time"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

// MenuService is the catalog plumbing: restaurants, dishes and daily
// slot generation.
type MenuService struct {
	restaurants storage.RestaurantStore
}

func NewMenuService(restaurants storage.RestaurantStore) *MenuService {
	return &MenuService{restaurants: restaurants}
}

func (s *MenuService) CreateRestaurant(name string, openingHour, closingHour int) (*model.Restaurant, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: restaurant name required", ErrInvalidRequest)
	}
	if openingHour < 0 || closingHour > 24 || openingHour >= closingHour {
		return nil, fmt.Errorf("%w: invalid operating hours %d-%d", ErrInvalidRequest, openingHour, closingHour)
	}
	r := model.NewRestaurant(name, openingHour, closingHour)
	s.restaurants.Add(r)
	return r, nil
}

func (s *MenuService) ListRestaurants() []*model.Restaurant {
	return s.restaurants.List()
}

func (s *MenuService) GetMenu(restaurantID string) ([]model.Dish, error) {
	r, ok := s.restaurants.FindByID(restaurantID)
	if !ok {
		return nil, fmt.Errorf("%w: restaurant %s", ErrEntityNotFound, restaurantID)
	}
	return r.Menu(), nil
}

func (s *MenuService) AddDish(restaurantID, name, category string, price float64) (model.Dish, error) {
	r, ok := s.restaurants.FindByID(restaurantID)
	if !ok {
		return model.Dish{}, fmt.Errorf("%w: restaurant %s", ErrEntityNotFound, restaurantID)
	}
	if name == "" || price <= 0 {
		return model.Dish{}, fmt.Errorf("%w: dish needs a name and a positive price", ErrInvalidRequest)
	}
	return r.AddDish(name, category, price), nil
}

func (s *MenuService) RemoveDish(restaurantID, dishID string) error {
	r, ok := s.restaurants.FindByID(restaurantID)
	if !ok {
		return fmt.Errorf("%w: restaurant %s", ErrEntityNotFound, restaurantID)
	}
	if !r.RemoveDish(dishID) {
		return fmt.Errorf("%w: dish %s", ErrEntityNotFound, dishID)
	}
	return nil
}

// GenerateDailySlots creates the restaurant's delivery windows for the
// given day within its operating hours. Already generated buckets are
// left untouched.
func (s *MenuService) GenerateDailySlots(restaurantID string, date time.Time, capacityPerSlot int) ([]*model.DeliverySlot, error) {
	r, ok := s.restaurants.FindByID(restaurantID)
	if !ok {
		return nil, fmt.Errorf("%w: restaurant %s", ErrEntityNotFound, restaurantID)
	}
	if capacityPerSlot <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidRequest)
	}
	open, close := r.OperatingWindow(date)
	return r.Schedule.GenerateDailySlots(open, close, capacityPerSlot), nil
}
