package orders

import (
	"context"
	"errors"
	"fmt"

	"delivery-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByCustomerID(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error)
	UpdateStatusForCustomer(ctx context.Context, orderID, customerID, status string) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, reference, customer_id, status, items, delivery_location, payment, subtotal, delivery_fee, handling_fee, total, created_at, updated_at`

// Create inserts a new order. items, delivery_location and payment are JSONB.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (id, reference, customer_id, status, items, delivery_location, payment, subtotal, delivery_fee, handling_fee, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + orderColumns

	row := r.db.QueryRow(ctx, query,
		order.ID,
		order.Reference,
		order.CustomerID,
		order.Status,
		order.Items,
		order.DeliveryLocation,
		order.Payment,
		order.Subtotal,
		order.DeliveryFee,
		order.HandlingFee,
		order.Total,
	)
	created, err := r.scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOrder: %w", err)
	}
	return created, nil
}

// scanOrder is a helper function to scan a row into an Order model.
func (r *Repository) scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.Reference,
		&order.CustomerID,
		&order.Status,
		&order.Items,
		&order.DeliveryLocation,
		&order.Payment,
		&order.Subtotal,
		&order.DeliveryFee,
		&order.HandlingFee,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &order, nil
}

// FindByID retrieves a single order by its ID.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return order, nil
}

// ListByCustomerID retrieves a customer's orders, newest first.
func (r *Repository) ListByCustomerID(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByCustomerID.Query: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByCustomerID.Scan: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByCustomerID.Rows: %w", err)
	}

	var total int
	err = r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE customer_id = $1", customerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByCustomerID.Count: %w", err)
	}

	return orders, total, nil
}

// UpdateStatusForCustomer updates the status of an order owned by customerID.
func (r *Repository) UpdateStatusForCustomer(ctx context.Context, orderID, customerID, status string) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND customer_id = $3`

	cmdTag, err := r.db.Exec(ctx, query, status, orderID, customerID)
	if err != nil {
		return fmt.Errorf("repository.UpdateStatusForCustomer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
