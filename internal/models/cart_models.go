package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"delivery-marketplace/internal/pricing"

	"github.com/shopspring/decimal"
)

// Variant tags a LineItem as an immediate order or a pre-order.
type Variant string

const (
	VariantImmediate Variant = "immediate"
	VariantPreOrder  Variant = "pre_order"
)

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	return v == VariantImmediate || v == VariantPreOrder
}

// FlexibleID accepts both JSON strings and JSON numbers; catalog records use
// either for product ids.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// PreOrderDetails is only present on pre-order lines.
type PreOrderDetails struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"`
	Instructions string `json:"instructions,omitempty"`
}

// LineItem is one product entry in a cart. For pre-orders Quantity is the
// number of servings.
type LineItem struct {
	ID        string           `json:"id"`
	VendorID  string           `json:"vendor_id,omitempty"`
	Title     string           `json:"title"`
	Price     decimal.Decimal  `json:"price"`
	PhotoURLs []string         `json:"photo_urls"`
	Quantity  int              `json:"quantity"`
	Variant   Variant          `json:"variant"`
	PreOrder  *PreOrderDetails `json:"pre_order,omitempty"`
}

// LineTotal returns price × quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return pricing.LineTotal(li.Price, li.Quantity)
}

// Validate checks the invariants that do not depend on quantity.
func (li LineItem) Validate() error {
	if strings.TrimSpace(li.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidItem)
	}
	if li.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	}
	switch li.Variant {
	case VariantImmediate:
		if li.PreOrder != nil {
			return fmt.Errorf("%w: immediate item carries pre-order details", ErrInvalidItem)
		}
	case VariantPreOrder:
		if li.PreOrder == nil {
			return fmt.Errorf("%w: pre-order item without date and time", ErrInvalidItem)
		}
	default:
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidItem, li.Variant)
	}
	return nil
}

// Clone returns a deep copy so callers can never mutate cart internals.
func (li LineItem) Clone() LineItem {
	out := li
	if li.PhotoURLs != nil {
		out.PhotoURLs = append([]string(nil), li.PhotoURLs...)
	}
	if li.PreOrder != nil {
		p := *li.PreOrder
		out.PreOrder = &p
	}
	return out
}

// LineItemView adds the derived total to the JSON form of a line.
type LineItemView struct {
	LineItem
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartView is the JSON representation of a cart.
type CartView struct {
	Items    []LineItemView  `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// NewCartView renders items in order with fresh totals.
func NewCartView(items []LineItem) CartView {
	view := CartView{Items: make([]LineItemView, 0, len(items))}
	for _, it := range items {
		view.Items = append(view.Items, LineItemView{LineItem: it, TotalPrice: it.LineTotal()})
		view.Count += it.Quantity
	}
	view.Subtotal = pricing.Subtotal(items)
	return view
}

// AddItemRequest is the body of POST /cart/items. Price accepts numbers and
// numeric strings; a missing or null price is rejected.
type AddItemRequest struct {
	ID            FlexibleID       `json:"id" validate:"required"`
	VendorID      FlexibleID       `json:"vendor_id"`
	Title         string           `json:"title"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	PhotoURLs     []string         `json:"photo_urls"`
	QuantityDelta int              `json:"quantity_delta" validate:"required"`
}

// PreOrderForm holds the scheduling fields of a pre-order. Servings 0 means
// unset and defaults to 1.
type PreOrderForm struct {
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required,clock"`
	Servings     int    `json:"servings" validate:"gte=1,lte=8"`
	Instructions string `json:"instructions"`
}

// PreOrderRequest is the body of POST /cart/preorders.
type PreOrderRequest struct {
	ID        FlexibleID       `json:"id" validate:"required"`
	VendorID  FlexibleID       `json:"vendor_id"`
	Title     string           `json:"title"`
	Price     *decimal.Decimal `json:"price"`
	PhotoURLs []string         `json:"photo_urls"`
	PreOrderForm
}

// CartAction names the kind of mutation reported to the notification hook.
type CartAction string

const (
	CartItemAdded   CartAction = "added"
	CartItemUpdated CartAction = "updated"
	CartItemRemoved CartAction = "removed"
	CartPreOrderSet CartAction = "pre_order_set"
	CartCleared     CartAction = "cleared"
	CartOrdered     CartAction = "ordered"
)

// CartEvent is passed to the notification hook once per successful mutation.
type CartEvent struct {
	CustomerID string     `json:"customer_id"`
	Action     CartAction `json:"action"`
	ItemID     string     `json:"item_id,omitempty"`
	Quantity   int        `json:"quantity"`
	At         time.Time  `json:"at"`
}
