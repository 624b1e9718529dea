package model

import "time"

type User struct {
	ID            string    `json:"id"`
	Login         string    `json:"login"`
	PasswordHash  []byte    `json:"-"`
	CreditBalance float64   `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
}
