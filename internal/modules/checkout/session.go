package checkout

import (
	"fmt"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/pricing"
)

// Session is one customer's checkout attempt. It is persisted between
// requests, so it only ever holds the redacted payment summary.
type Session struct {
	ID               string                    `json:"id"`
	CustomerID       string                    `json:"customer_id"`
	Step             models.Step               `json:"step"`
	Cart             []models.LineItem         `json:"cart,omitempty"`
	VendorID         string                    `json:"vendor_id,omitempty"`
	VendorLocation   *pricing.Point            `json:"vendor_location,omitempty"`
	DeliveryLocation *models.DeliveryLocation  `json:"delivery_location,omitempty"`
	UsingFallback    bool                      `json:"using_fallback,omitempty"`
	LocationError    string                    `json:"location_error,omitempty"`
	Payment          *models.PaymentSummary    `json:"payment,omitempty"`
	SubmissionError  string                    `json:"submission_error,omitempty"`
	LastConfirmation *models.OrderConfirmation `json:"last_confirmation,omitempty"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// NewSession starts a customer in reviewing_cart.
func NewSession(id, customerID string, now time.Time) *Session {
	return &Session{ID: id, CustomerID: customerID, Step: models.StepReviewingCart, UpdatedAt: now}
}

func (s *Session) transitionError(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", models.ErrInvalidTransition, action, s.Step)
}

// Start moves to acquiring_location with a snapshot of cart, restarting any
// abandoned attempt. Callers must not start while a submission is running.
func (s *Session) Start(cart []models.LineItem, now time.Time) error {
	if len(cart) == 0 {
		return models.ErrCartEmpty
	}
	s.Cart = cart
	s.VendorID = cart[0].VendorID
	s.VendorLocation = nil
	s.DeliveryLocation = nil
	s.UsingFallback = false
	s.LocationError = ""
	s.Payment = nil
	s.SubmissionError = ""
	s.Step = models.StepAcquiringLocation
	s.UpdatedAt = now
	return nil
}

// LocationResolved stores the device location and moves on to payment.
func (s *Session) LocationResolved(loc models.DeliveryLocation, now time.Time) error {
	if s.Step != models.StepAcquiringLocation {
		return s.transitionError("set the delivery location")
	}
	s.DeliveryLocation = &loc
	s.UsingFallback = false
	s.LocationError = ""
	s.Step = models.StepEnteringPayment
	s.UpdatedAt = now
	return nil
}

// LocationFailed records the error and the fallback address.
func (s *Session) LocationFailed(message string, fallback models.DeliveryLocation, now time.Time) error {
	if s.Step != models.StepAcquiringLocation {
		return s.transitionError("record a location failure")
	}
	s.DeliveryLocation = &fallback
	s.UsingFallback = true
	s.LocationError = message
	s.Step = models.StepLocationFailed
	s.UpdatedAt = now
	return nil
}

// ProceedToPayment continues from location_failed with the fallback address.
func (s *Session) ProceedToPayment(now time.Time) error {
	if s.Step != models.StepLocationFailed {
		return s.transitionError("proceed to payment")
	}
	s.Step = models.StepEnteringPayment
	s.UpdatedAt = now
	return nil
}

// PaymentAccepted moves to confirming. The caller has already validated the
// full details; only the summary is kept.
func (s *Session) PaymentAccepted(summary models.PaymentSummary, now time.Time) error {
	if s.Step != models.StepEnteringPayment {
		return s.transitionError("submit payment details")
	}
	s.Payment = &summary
	s.SubmissionError = ""
	s.Step = models.StepConfirming
	s.UpdatedAt = now
	return nil
}

// SubmissionSucceeded passes through confirmed and resets the session to
// reviewing_cart, keeping the confirmation for display.
func (s *Session) SubmissionSucceeded(conf models.OrderConfirmation, now time.Time) error {
	if s.Step != models.StepConfirming {
		return s.transitionError("confirm the order")
	}
	s.Step = models.StepConfirmed
	s.LastConfirmation = &conf
	s.reset(now)
	return nil
}

// SubmissionFailed returns to entering_payment. The cart snapshot is kept and
// the payment details have to be entered again.
func (s *Session) SubmissionFailed(message string, now time.Time) error {
	if s.Step != models.StepConfirming {
		return s.transitionError("fail the submission")
	}
	s.Payment = nil
	s.SubmissionError = message
	s.Step = models.StepEnteringPayment
	s.UpdatedAt = now
	return nil
}

// BackToCart abandons the attempt and drops the payment details.
func (s *Session) BackToCart(now time.Time) {
	s.reset(now)
}

func (s *Session) reset(now time.Time) {
	s.Cart = nil
	s.VendorID = ""
	s.VendorLocation = nil
	s.DeliveryLocation = nil
	s.UsingFallback = false
	s.LocationError = ""
	s.Payment = nil
	s.SubmissionError = ""
	s.Step = models.StepReviewingCart
	s.UpdatedAt = now
}

// CustomerPoint is the customer location used for fees. A fallback address
// does not count as a known location.
func (s *Session) CustomerPoint() *pricing.Point {
	if s.DeliveryLocation == nil || s.UsingFallback {
		return nil
	}
	p := s.DeliveryLocation.Point()
	return &p
}

// Clone deep-copies the session so stores never share state with callers.
func (s *Session) Clone() *Session {
	out := *s
	if s.Cart != nil {
		out.Cart = make([]models.LineItem, len(s.Cart))
		for i, it := range s.Cart {
			out.Cart[i] = it.Clone()
		}
	}
	if s.VendorLocation != nil {
		p := *s.VendorLocation
		out.VendorLocation = &p
	}
	if s.DeliveryLocation != nil {
		l := *s.DeliveryLocation
		out.DeliveryLocation = &l
	}
	if s.Payment != nil {
		p := *s.Payment
		out.Payment = &p
	}
	if s.LastConfirmation != nil {
		c := *s.LastConfirmation
		out.LastConfirmation = &c
	}
	return &out
}
