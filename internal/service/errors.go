package service

import "errors"

// Business failures are sentinel error values so handlers can map them
// to responses with errors.Is. Anything not in this taxonomy is an
// unexpected failure and surfaces as a wrapped internal error.
var (
	ErrEntityNotFound     = errors.New("entity not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidState       = errors.New("invalid state")
	ErrSlotNotFound       = errors.New("delivery slot not found")
	ErrSlotUnavailable    = errors.New("delivery slot unavailable")
	ErrPaymentTimeout     = errors.New("payment window elapsed")
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrLoginTaken         = errors.New("login already exists")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCartConflict       = errors.New("cart holds items from another restaurant")
	ErrActiveOrderExists  = errors.New("user already has an active order")
)
