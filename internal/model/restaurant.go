package model

import (
	"sort"
	"sync"
	"time"
)

type Dish struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Restaurant holds a menu and owns its delivery schedule. Menu access is
// guarded because menu CRUD and order placement run on different
// request goroutines.
type Restaurant struct {
	ID          string
	Name        string
	OpeningHour int
	ClosingHour int
	Schedule    *DeliverySchedule

	mu     sync.RWMutex
	dishes map[string]Dish
}

func NewRestaurant(name string, openingHour, closingHour int) *Restaurant {
	id := NewID()
	return &Restaurant{
		ID:          id,
		Name:        name,
		OpeningHour: openingHour,
		ClosingHour: closingHour,
		Schedule:    NewDeliverySchedule(id),
		dishes:      make(map[string]Dish),
	}
}

func (r *Restaurant) AddDish(name, category string, price float64) Dish {
	d := Dish{ID: NewID(), Name: name, Category: category, Price: price}
	r.mu.Lock()
	r.dishes[d.ID] = d
	r.mu.Unlock()
	return d
}

func (r *Restaurant) RemoveDish(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dishes[id]; !ok {
		return false
	}
	delete(r.dishes, id)
	return true
}

func (r *Restaurant) FindDish(id string) (Dish, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dishes[id]
	return d, ok
}

func (r *Restaurant) Menu() []Dish {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Dish, 0, len(r.dishes))
	for _, d := range r.dishes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OperatingWindow returns the opening and closing instants of the given
// calendar day in the restaurant's hours.
func (r *Restaurant) OperatingWindow(date time.Time) (open, close time.Time) {
	y, m, d := date.Date()
	open = time.Date(y, m, d, r.OpeningHour, 0, 0, 0, date.Location())
	close = time.Date(y, m, d, r.ClosingHour, 0, 0, 0, date.Location())
	return open, close
}
