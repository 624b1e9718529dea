package service

import (
	"fmt"
	"sync"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

// CartService keeps per-user carts in memory. A cart holds dishes from
// a single restaurant; carts are discarded once an order is placed.
type CartService struct {
	restaurants storage.RestaurantStore

	mu    sync.Mutex
	carts map[string]*model.Cart
}

func NewCartService(restaurants storage.RestaurantStore) *CartService {
	return &CartService{
		restaurants: restaurants,
		carts:       make(map[string]*model.Cart),
	}
}

// AddItem puts quantity units of the dish into the user's cart, with
// the menu price captured now.
func (s *CartService) AddItem(userID, restaurantID, dishID string, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidRequest)
	}
	restaurant, ok := s.restaurants.FindByID(restaurantID)
	if !ok {
		return nil, fmt.Errorf("%w: restaurant %s", ErrEntityNotFound, restaurantID)
	}
	dish, ok := restaurant.FindDish(dishID)
	if !ok {
		return nil, fmt.Errorf("%w: dish %s", ErrEntityNotFound, dishID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		cart = &model.Cart{UserID: userID, RestaurantID: restaurantID}
		s.carts[userID] = cart
	}
	if cart.RestaurantID != restaurantID {
		return nil, ErrCartConflict
	}
	cart.Add(dish, quantity)
	return cloneCart(cart), nil
}

// Get returns a snapshot of the user's cart, or nil if there is none.
func (s *CartService) Get(userID string) *model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		return nil
	}
	return cloneCart(cart)
}

func (s *CartService) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

func cloneCart(c *model.Cart) *model.Cart {
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	return &cp
}
