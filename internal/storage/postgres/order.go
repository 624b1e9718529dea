package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"campusmeal/internal/model"
	"campusmeal/internal/storage"
)

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, user_id, restaurant_id, items, total_amount, payment_method,
	status, delivery_slot_id, slot_reserved_at, ordered_at, delivery_time`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var (
		o         model.Order
		itemsJSON []byte
		slotID    sql.NullString
	)
	err := row.Scan(&o.ID, &o.UserID, &o.RestaurantID, &itemsJSON, &o.TotalAmount,
		&o.PaymentMethod, &o.Status, &slotID, &o.SlotReservedAt, &o.OrderedAt, &o.DeliveryTime)
	if err != nil {
		return nil, err
	}
	if slotID.Valid {
		o.DeliverySlotID = slotID.String
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	return &o, nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *OrderStore) Save(ctx context.Context, o *model.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	var slotID any
	if o.DeliverySlotID != "" {
		slotID = o.DeliverySlotID
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, restaurant_id, items, total_amount, payment_method,
			status, delivery_slot_id, slot_reserved_at, ordered_at, delivery_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			delivery_slot_id = EXCLUDED.delivery_slot_id,
			slot_reserved_at = EXCLUDED.slot_reserved_at,
			delivery_time = EXCLUDED.delivery_time`,
		o.ID, o.UserID, o.RestaurantID, itemsJSON, o.TotalAmount, o.PaymentMethod,
		o.Status, slotID, o.SlotReservedAt, o.OrderedAt, o.DeliveryTime,
	)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// Expire is a compare-and-set: the row is locked, checked for a
// terminal status and only then rewritten, so the checkout flow and the
// sweep cannot both claim the same reservation for release.
func (s *OrderStore) Expire(ctx context.Context, id string) (string, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		status string
		slotID sql.NullString
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status, delivery_slot_id FROM orders WHERE id = $1 FOR UPDATE`, id,
	).Scan(&status, &slotID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, storage.ErrNotFound
	}
	if err != nil {
		return "", false, fmt.Errorf("lock order: %w", err)
	}
	if status == model.OrderStatusConfirmed || status == model.OrderStatusExpired {
		return "", false, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, delivery_slot_id = NULL, slot_reserved_at = NULL
		WHERE id = $1`,
		id, model.OrderStatusExpired,
	)
	if err != nil {
		return "", false, fmt.Errorf("expire order: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit tx: %w", err)
	}
	return slotID.String, true, nil
}

func (s *OrderStore) FindAllByStatus(ctx context.Context, status string) ([]*model.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY ordered_at ASC`, status)
	if err != nil {
		return nil, fmt.Errorf("query orders by status: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY ordered_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]*model.Order, error) {
	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return out, nil
}

func (s *OrderStore) ExistsActiveOrderByUser(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE user_id = $1 AND status NOT IN ($2, $3)
		)`,
		userID, model.OrderStatusConfirmed, model.OrderStatusExpired,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active order: %w", err)
	}
	return exists, nil
}
