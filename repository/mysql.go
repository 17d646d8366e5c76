package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abm5616/farmcloud/models"
)

// MySQL is the production Gateway backed by the shared MySQL pool.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

const orderColumns = `o.id, o.order_number, o.customer_id, COALESCE(c.full_name, ''),
	o.status, o.delivery_method, o.delivery_address, o.delivery_date,
	o.delivery_time_slot, o.delivery_notes, o.customer_notes, o.internal_notes,
	o.payment_status, o.payment_method, o.subtotal, o.delivery_fee,
	o.discount_amount, o.total_amount, o.amount_paid,
	o.created_at, o.updated_at, o.confirmed_at, o.completed_at`

const orderSelect = `SELECT ` + orderColumns + `
	FROM orders o LEFT JOIN customers c ON c.id = o.customer_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o             models.Order
		deliveryDate  sql.NullTime
		paymentMethod sql.NullString
		confirmedAt   sql.NullTime
		completedAt   sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName,
		&o.Status, &o.DeliveryMethod, &o.DeliveryAddress, &deliveryDate,
		&o.DeliveryTimeSlot, &o.DeliveryNotes, &o.CustomerNotes, &o.InternalNotes,
		&o.PaymentStatus, &paymentMethod, &o.Subtotal, &o.DeliveryFee,
		&o.DiscountAmount, &o.TotalAmount, &o.AmountPaid,
		&o.CreatedAt, &o.UpdatedAt, &confirmedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if deliveryDate.Valid {
		o.DeliveryDate = deliveryDate.Time.Format("2006-01-02")
	}
	if paymentMethod.Valid {
		o.PaymentMethod = models.PaymentMethod(paymentMethod.String)
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		o.ConfirmedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		o.CompletedAt = &t
	}
	o.ComputeBalanceDue()
	return &o, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func loadItems(ctx context.Context, q querier, orderID int64) ([]models.OrderLineItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, animal_id, offer_id, item_name, quantity, unit_price, total_price
		FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderLineItem
	for rows.Next() {
		var (
			item     models.OrderLineItem
			animalID sql.NullInt64
			offerID  sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &animalID, &offerID, &item.ItemName,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, err
		}
		if animalID.Valid {
			v := animalID.Int64
			item.AnimalID = &v
		}
		if offerID.Valid {
			v := offerID.Int64
			item.OfferID = &v
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []models.OrderLineItem) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, animal_id, offer_id, item_name, quantity, unit_price, total_price)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			orderID, item.AnimalID, item.OfferID, item.ItemName,
			item.Quantity, item.UnitPrice, item.UnitPrice.MulInt(item.Quantity))
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Create persists a draft inside one transaction, assigning the next
// ORD-YYYYMMDD-NNNN number for the current day. The day's last number
// row is locked so concurrent creates cannot collide.
func (m *MySQL) Create(ctx context.Context, d models.OrderDraft) (*models.Order, error) {
	if err := validateDraft(&d); err != nil {
		return nil, err
	}
	items := mergeItems(d.Items)

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var last sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT order_number FROM orders
		WHERE order_number LIKE ?
		ORDER BY order_number DESC LIMIT 1 FOR UPDATE`,
		orderNumberPrefix+"-"+now.Format("20060102")+"-%").Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reserve order number: %w", err)
	}
	number := FormatOrderNumber(now, NumberSequence(last.String)+1)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (order_number, customer_id, status,
			delivery_method, delivery_address, delivery_date, delivery_time_slot,
			delivery_notes, customer_notes, internal_notes,
			payment_status, payment_method,
			subtotal, delivery_fee, discount_amount, total_amount, amount_paid,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		number, d.CustomerID, models.OrderPending,
		d.DeliveryMethod, d.DeliveryAddress, nullIfEmpty(d.DeliveryDate), d.DeliveryTimeSlot,
		d.DeliveryNotes, d.CustomerNotes, d.InternalNotes,
		models.PaymentUnpaid, nullIfEmpty(string(d.PaymentMethod)),
		d.Subtotal, d.DeliveryFee, d.DiscountAmount, d.TotalAmount, models.ZeroMoney(),
		now, now)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := insertItems(ctx, tx, orderID, items); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	return m.Get(ctx, orderID)
}

func (m *MySQL) Get(ctx context.Context, id int64) (*models.Order, error) {
	order, err := scanOrder(m.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	order.Items, err = loadItems(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (m *MySQL) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	query := orderSelect + ` WHERE 1=1`
	var args []interface{}
	if filter.Status != "" {
		query += ` AND o.status = ?`
		args = append(args, filter.Status)
	}
	if filter.PaymentStatus != "" {
		query += ` AND o.payment_status = ?`
		args = append(args, filter.PaymentStatus)
	}
	if filter.DeliveryMethod != "" {
		query += ` AND o.delivery_method = ?`
		args = append(args, filter.DeliveryMethod)
	}
	if filter.CustomerID != 0 {
		query += ` AND o.customer_id = ?`
		args = append(args, filter.CustomerID)
	}
	query += ` ORDER BY o.created_at DESC, o.id DESC`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items, err = loadItems(ctx, m.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (m *MySQL) lockOrder(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order, err := scanOrder(tx.QueryRowContext(ctx, orderSelect+` WHERE o.id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	order.Items, err = loadItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (m *MySQL) Update(ctx context.Context, id int64, patch models.OrderUpdate) (*models.Order, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := m.lockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUpdate(order, patch); err != nil {
		return nil, err
	}
	order.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET
			delivery_method = ?, delivery_address = ?, delivery_date = ?,
			delivery_time_slot = ?, delivery_notes = ?, customer_notes = ?, internal_notes = ?,
			payment_method = ?,
			subtotal = ?, delivery_fee = ?, discount_amount = ?, total_amount = ?,
			updated_at = ?
		WHERE id = ?`,
		order.DeliveryMethod, order.DeliveryAddress, nullIfEmpty(order.DeliveryDate),
		order.DeliveryTimeSlot, order.DeliveryNotes, order.CustomerNotes, order.InternalNotes,
		nullIfEmpty(string(order.PaymentMethod)),
		order.Subtotal, order.DeliveryFee, order.DiscountAmount, order.TotalAmount,
		order.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if patch.Items != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
			return nil, fmt.Errorf("replace order items: %w", err)
		}
		if err := insertItems(ctx, tx, id, order.Items); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return m.Get(ctx, id)
}

func (m *MySQL) UpdateStatus(ctx context.Context, id int64, change StatusChange) (*models.Order, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := m.lockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	changed, err := applyStatusChange(order, change, time.Now())
	if err != nil {
		return nil, err
	}
	if changed {
		order.UpdatedAt = time.Now()
		_, err = tx.ExecContext(ctx, `
			UPDATE orders SET
				status = ?, payment_status = ?, amount_paid = ?,
				confirmed_at = ?, completed_at = ?, updated_at = ?
			WHERE id = ?`,
			order.Status, order.PaymentStatus, order.AmountPaid,
			order.ConfirmedAt, order.CompletedAt, order.UpdatedAt, id)
		if err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return order, nil
}

func (m *MySQL) Delete(ctx context.Context, id int64) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrOrderNotFound
	}
	return tx.Commit()
}
