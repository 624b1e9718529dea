// Package storage defines the persistence contracts the services
// operate against. Implementations live in the memory and postgres
// subpackages; which one backs a deployment is decided at startup.
package storage

import (
	"context"
	"errors"

	"campusmeal/internal/model"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrLoginTaken         = errors.New("login already exists")
	ErrInsufficientCredit = errors.New("insufficient credit")
)

type OrderStore interface {
	FindByID(ctx context.Context, id string) (*model.Order, error)
	Save(ctx context.Context, o *model.Order) error
	FindAllByStatus(ctx context.Context, status string) ([]*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	// ExistsActiveOrderByUser reports whether the user has an order in a
	// non-terminal state.
	ExistsActiveOrderByUser(ctx context.Context, userID string) (bool, error)
	// Expire atomically moves a non-terminal order to EXPIRED and clears
	// its slot binding, returning the slot id that was bound. expired is
	// false when another caller got there first or the order is already
	// terminal; of any number of concurrent callers exactly one sees
	// expired == true.
	Expire(ctx context.Context, id string) (slotID string, expired bool, err error)
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	// DebitCredit atomically checks the balance and subtracts amount,
	// returning ErrInsufficientCredit without mutation if it is short.
	DebitCredit(ctx context.Context, userID string, amount float64) error
	AddCredit(ctx context.Context, userID string, amount float64) error
}

// RestaurantStore indexes restaurants and, through them, their delivery
// schedules. Restaurants live in process memory in every deployment
// mode: slot capacity counters are the in-process synchronization point
// and schedules are regenerated each day.
type RestaurantStore interface {
	FindByID(id string) (*model.Restaurant, bool)
	Add(r *model.Restaurant)
	List() []*model.Restaurant
}
