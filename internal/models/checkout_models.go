package models

import (
	"time"

	"delivery-marketplace/internal/pricing"

	"github.com/shopspring/decimal"
)

// Step is a checkout state.
type Step string

const (
	StepReviewingCart     Step = "reviewing_cart"
	StepAcquiringLocation Step = "acquiring_location"
	StepLocationFailed    Step = "location_failed"
	StepEnteringPayment   Step = "entering_payment"
	StepConfirming        Step = "confirming"
	StepConfirmed         Step = "confirmed"
)

// PaymentMethod is the customer's chosen way to pay.
type PaymentMethod string

const (
	PaymentMpesa PaymentMethod = "mpesa"
	PaymentCard  PaymentMethod = "card"
)

// DeliveryLocation is where the order goes. Address may be a reverse geocoded
// value, a client supplied label or the configured fallback.
type DeliveryLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Point converts the location for the fee calculator.
func (l DeliveryLocation) Point() pricing.Point {
	return pricing.Point{Lat: l.Lat, Lng: l.Lng}
}

// GeolocationErrorCode mirrors the device geolocation failure codes.
type GeolocationErrorCode string

const (
	GeoPermissionDenied    GeolocationErrorCode = "permission_denied"
	GeoPositionUnavailable GeolocationErrorCode = "position_unavailable"
	GeoTimeout             GeolocationErrorCode = "timeout"
	GeoUnknown             GeolocationErrorCode = "unknown"
)

// LocationReport is the body of POST /checkout/location: either coordinates
// or the error the device reported.
type LocationReport struct {
	Lat     *float64             `json:"lat"`
	Lng     *float64             `json:"lng"`
	Address string               `json:"address"`
	Error   GeolocationErrorCode `json:"error"`
	Message string               `json:"message"`
}

// PaymentDetails is the payment form as bound from the request. It is never
// persisted, logged or forwarded; use Summary for that.
type PaymentDetails struct {
	Method         PaymentMethod `json:"payment_method"`
	Phone          string        `json:"phone,omitempty"`
	CardNumber     string        `json:"card_number,omitempty"`
	CardholderName string        `json:"cardholder_name,omitempty"`
	Expiry         string        `json:"expiry,omitempty"`
	CVC            string        `json:"cvc,omitempty"`
}

// Summary is the redacted form of the payment details safe to persist and send.
func (p PaymentDetails) Summary() PaymentSummary {
	s := PaymentSummary{Method: p.Method}
	switch p.Method {
	case PaymentMpesa:
		s.Phone = p.Phone
	case PaymentCard:
		s.CardholderName = p.CardholderName
		if n := len(p.CardNumber); n >= 4 {
			s.CardLast4 = p.CardNumber[n-4:]
		}
	}
	return s
}

// PaymentSummary never contains the card number or the CVC.
type PaymentSummary struct {
	Method         PaymentMethod `json:"payment_method"`
	Phone          string        `json:"phone,omitempty"`
	CardLast4      string        `json:"card_last4,omitempty"`
	CardholderName string        `json:"cardholder_name,omitempty"`
}

// OrderSubmission is the body handed to the order submitter.
type OrderSubmission struct {
	CustomerID       string           `json:"customer_id"`
	Cart             []LineItem       `json:"cart"`
	DeliveryLocation DeliveryLocation `json:"delivery_location"`
	PaymentMethod    PaymentMethod    `json:"payment_method"`
	PaymentDetails   PaymentSummary   `json:"payment_details"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	DeliveryFee      decimal.Decimal  `json:"delivery_fee"`
	HandlingFee      decimal.Decimal  `json:"handling_fee"`
	Total            decimal.Decimal  `json:"total"`
}

// OrderConfirmation is returned after a successful submission.
type OrderConfirmation struct {
	OrderID     string          `json:"order_id"`
	Reference   string          `json:"reference"`
	Total       decimal.Decimal `json:"total"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

// CheckoutView is the JSON representation of a checkout session. Payment
// details are reduced to the method.
type CheckoutView struct {
	SessionID        string             `json:"session_id"`
	Step             Step               `json:"step"`
	Cart             CartView           `json:"cart"`
	VendorID         string             `json:"vendor_id,omitempty"`
	DeliveryLocation *DeliveryLocation  `json:"delivery_location,omitempty"`
	LocationError    string             `json:"location_error,omitempty"`
	PaymentMethod    PaymentMethod      `json:"payment_method,omitempty"`
	Quote            pricing.Quote      `json:"quote"`
	SubmissionError  string             `json:"submission_error,omitempty"`
	LastConfirmation *OrderConfirmation `json:"last_confirmation,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
