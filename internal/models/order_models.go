package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a submitted checkout as stored in the database.
type Order struct {
	ID               string           `json:"id"`
	Reference        string           `json:"reference"`
	CustomerID       string           `json:"customer_id"`
	Status           string           `json:"status"`
	Items            []LineItem       `json:"items"` // JSONB
	DeliveryLocation DeliveryLocation `json:"delivery_location"`
	Payment          PaymentSummary   `json:"payment"` // JSONB
	Subtotal         decimal.Decimal  `json:"subtotal"`
	DeliveryFee      decimal.Decimal  `json:"delivery_fee"`
	HandlingFee      decimal.Decimal  `json:"handling_fee"`
	Total            decimal.Decimal  `json:"total"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Order statuses.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusCancelled = "cancelled"
)
