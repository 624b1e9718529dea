// Package memory provides mutex-guarded in-memory store implementations,
// used by tests and by deployments without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*model.Order)}
}

func (s *OrderStore) FindByID(_ context.Context, id string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return o, nil
}

func (s *OrderStore) Save(_ context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return nil
}

// Expire delegates to the order's own winner-takes-all transition; the
// shared pointer means the map entry is already up to date afterwards.
func (s *OrderStore) Expire(_ context.Context, id string) (string, bool, error) {
	s.mu.RLock()
	o, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return "", false, storage.ErrNotFound
	}
	slotID, err := o.Expire()
	if err != nil {
		return "", false, nil
	}
	return slotID, true, nil
}

func (s *OrderStore) FindAllByStatus(_ context.Context, status string) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Order
	for _, o := range s.orders {
		if o.CurrentStatus() == status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderedAt.Before(out[j].OrderedAt) })
	return out, nil
}

func (s *OrderStore) ListByUser(_ context.Context, userID string) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderedAt.After(out[j].OrderedAt) })
	return out, nil
}

func (s *OrderStore) ExistsActiveOrderByUser(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.UserID == userID && !o.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

type UserStore struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byLogin map[string]*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*model.User),
		byLogin: make(map[string]*model.User),
	}
}

func (s *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) FindByLogin(_ context.Context, login string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byLogin[login]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byLogin[u.Login]; ok {
		return storage.ErrLoginTaken
	}
	cp := *u
	s.byID[cp.ID] = &cp
	s.byLogin[cp.Login] = &cp
	return nil
}

// DebitCredit performs the check-and-subtract under one lock so two
// concurrent payments cannot both spend the same balance.
func (s *UserStore) DebitCredit(_ context.Context, userID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return storage.ErrNotFound
	}
	if u.CreditBalance < amount {
		return storage.ErrInsufficientCredit
	}
	u.CreditBalance -= amount
	return nil
}

func (s *UserStore) AddCredit(_ context.Context, userID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.CreditBalance += amount
	return nil
}

type RestaurantStore struct {
	mu          sync.RWMutex
	restaurants map[string]*model.Restaurant
}

func NewRestaurantStore() *RestaurantStore {
	return &RestaurantStore{restaurants: make(map[string]*model.Restaurant)}
}

func (s *RestaurantStore) FindByID(id string) (*model.Restaurant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.restaurants[id]
	return r, ok
}

func (s *RestaurantStore) Add(r *model.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants[r.ID] = r
}

func (s *RestaurantStore) List() []*model.Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Restaurant, 0, len(s.restaurants))
	for _, r := range s.restaurants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
