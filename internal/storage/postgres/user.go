package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, login, password_hash, credit_balance, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *UserStore) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, login, password_hash, credit_balance, created_at FROM users WHERE login = $1`, login)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreditBalance, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, login, password_hash, credit_balance, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Login, u.PasswordHash, u.CreditBalance, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return storage.ErrLoginTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// DebitCredit locks the user row, checks the balance and subtracts in
// one transaction, so concurrent debits serialize on the row lock.
func (s *UserStore) DebitCredit(ctx context.Context, userID string, amount float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current float64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(credit_balance, 0) FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	if current < amount {
		return storage.ErrInsufficientCredit
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET credit_balance = credit_balance - $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	return tx.Commit()
}

func (s *UserStore) AddCredit(ctx context.Context, userID string, amount float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET credit_balance = COALESCE(credit_balance, 0) + $1 WHERE id = $2`, amount, userID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
