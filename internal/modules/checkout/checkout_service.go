package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/modules/cart"
	"delivery-marketplace/internal/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultGeolocationTimeout = 10 * time.Second
	DefaultSubmissionTimeout  = 30 * time.Second
)

// OrderSubmitter places the order. Only the redacted payment summary is ever
// passed to it.
type OrderSubmitter interface {
	Submit(ctx context.Context, sub models.OrderSubmission) (*models.OrderConfirmation, error)
}

// VendorLocator looks up where a vendor is. A nil point without error means
// the vendor has no coordinates on record.
type VendorLocator interface {
	VendorLocation(ctx context.Context, vendorID string) (*pricing.Point, error)
}

// CartSource hands out customer carts.
type CartSource interface {
	For(customerID string) *cart.Store
}

// ServiceInterface defines the contract for the checkout service.
type ServiceInterface interface {
	View(ctx context.Context, customerID string) (*models.CheckoutView, error)
	ProceedToCheckout(ctx context.Context, customerID string) (*models.CheckoutView, error)
	ResolveLocation(ctx context.Context, customerID string, provider GeolocationProvider) (*models.CheckoutView, error)
	ProceedToPayment(ctx context.Context, customerID string) (*models.CheckoutView, error)
	SubmitPayment(ctx context.Context, customerID string, details models.PaymentDetails) (*models.CheckoutView, error)
	Confirm(ctx context.Context, customerID string) (*models.OrderConfirmation, *models.CheckoutView, error)
	CancelSubmission(customerID string) bool
	BackToCart(ctx context.Context, customerID string) (*models.CheckoutView, error)
	Discard(ctx context.Context, customerID string) error
}

// Config holds the tunables of the checkout flow.
type Config struct {
	Fees               pricing.FeeSchedule
	GeolocationTimeout time.Duration
	SubmissionTimeout  time.Duration
	FallbackLocation   models.DeliveryLocation
}

// Service implements the checkout state machine on top of a SessionStore.
// Calls for the same customer are serialized.
type Service struct {
	store     SessionStore
	carts     CartSource
	vendors   VendorLocator
	submitter OrderSubmitter
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time

	locks sync.Map // customerID -> *sync.Mutex

	inflightMu sync.Mutex
	inflight   map[string]context.CancelFunc
}

// NewService creates a new checkout service.
func NewService(store SessionStore, carts CartSource, vendors VendorLocator, submitter OrderSubmitter, cfg Config, logger *zap.Logger) *Service {
	if cfg.GeolocationTimeout <= 0 {
		cfg.GeolocationTimeout = DefaultGeolocationTimeout
	}
	if cfg.SubmissionTimeout <= 0 {
		cfg.SubmissionTimeout = DefaultSubmissionTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		carts:     carts,
		vendors:   vendors,
		submitter: submitter,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		inflight:  make(map[string]context.CancelFunc),
	}
}

func (s *Service) lock(customerID string) func() {
	m, _ := s.locks.LoadOrStore(customerID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) load(ctx context.Context, customerID string) (*Session, error) {
	sess, err := s.store.Get(ctx, customerID)
	if errors.Is(err, models.ErrNotFound) {
		return NewSession(uuid.New().String(), customerID, s.now()), nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// update loads the session, applies fn and saves the result.
func (s *Service) update(ctx context.Context, customerID string, fn func(*Session) error) (*Session, error) {
	unlock := s.lock(customerID)
	defer unlock()

	sess, err := s.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	from := sess.Step
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	if from != sess.Step {
		s.logger.Info("checkout step changed",
			zap.String("customerID", customerID),
			zap.String("sessionID", sess.ID),
			zap.String("from", string(from)),
			zap.String("to", string(sess.Step)),
		)
	}
	return sess, nil
}

// View returns the current session with a fresh quote.
func (s *Service) View(ctx context.Context, customerID string) (*models.CheckoutView, error) {
	sess, err := s.load(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("service.View: %w", err)
	}
	return s.view(sess), nil
}

// ProceedToCheckout snapshots the cart and looks up the vendor location. A
// failed lookup is logged and leaves the flat fee in place.
func (s *Service) ProceedToCheckout(ctx context.Context, customerID string) (*models.CheckoutView, error) {
	items := s.carts.For(customerID).Items()
	sess, err := s.update(ctx, customerID, func(sess *Session) error {
		if s.submitting(customerID) {
			return models.ErrSubmissionInProgress
		}
		if err := sess.Start(items, s.now()); err != nil {
			return err
		}
		sess.VendorLocation = s.vendorLocation(ctx, sess.VendorID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.ProceedToCheckout: %w", err)
	}
	return s.view(sess), nil
}

func (s *Service) vendorLocation(ctx context.Context, vendorID string) *pricing.Point {
	if vendorID == "" || s.vendors == nil {
		return nil
	}
	p, err := s.vendors.VendorLocation(ctx, vendorID)
	if err != nil {
		s.logger.Warn("vendor location lookup failed, using flat delivery fee",
			zap.String("vendorID", vendorID), zap.Error(err))
		return nil
	}
	return p
}

// ResolveLocation asks provider for the customer position, bounded by the
// geolocation timeout. Any failure records the error with the fallback
// address and checkout continues to payment.
func (s *Service) ResolveLocation(ctx context.Context, customerID string, provider GeolocationProvider) (*models.CheckoutView, error) {
	sess, err := s.update(ctx, customerID, func(sess *Session) error {
		if sess.Step != models.StepAcquiringLocation {
			return sess.transitionError("resolve the location")
		}

		locCtx, cancel := context.WithTimeout(ctx, s.cfg.GeolocationTimeout)
		coords, err := locateWithTimeout(locCtx, provider)
		cancel()

		if err == nil {
			return sess.LocationResolved(models.DeliveryLocation{
				Lat:     coords.Lat,
				Lng:     coords.Lng,
				Address: coords.Address,
			}, s.now())
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Info("geolocation failed, using fallback address",
			zap.String("customerID", customerID), zap.Error(err))
		msg := fmt.Sprintf("Could not get your location (%v). Delivering to %s.", err, s.cfg.FallbackLocation.Address)
		if err := sess.LocationFailed(msg, s.cfg.FallbackLocation, s.now()); err != nil {
			return err
		}
		return sess.ProceedToPayment(s.now())
	})
	if err != nil {
		return nil, fmt.Errorf("service.ResolveLocation: %w", err)
	}
	return s.view(sess), nil
}

// ProceedToPayment continues from location_failed.
func (s *Service) ProceedToPayment(ctx context.Context, customerID string) (*models.CheckoutView, error) {
	sess, err := s.update(ctx, customerID, func(sess *Session) error {
		return sess.ProceedToPayment(s.now())
	})
	if err != nil {
		return nil, fmt.Errorf("service.ProceedToPayment: %w", err)
	}
	return s.view(sess), nil
}

// SubmitPayment validates details and moves to confirming. Invalid details
// leave the session untouched.
func (s *Service) SubmitPayment(ctx context.Context, customerID string, details models.PaymentDetails) (*models.CheckoutView, error) {
	sess, err := s.update(ctx, customerID, func(sess *Session) error {
		if sess.Step != models.StepEnteringPayment {
			return sess.transitionError("submit payment details")
		}
		if err := ValidatePayment(details, s.now()); err != nil {
			return err
		}
		return sess.PaymentAccepted(details.Summary(), s.now())
	})
	if err != nil {
		return nil, fmt.Errorf("service.SubmitPayment: %w", err)
	}
	return s.view(sess), nil
}

// Confirm submits the order. The call is bounded by the submission timeout
// and can be aborted with CancelSubmission. On success the ordered lines
// leave the cart and anything added since the snapshot stays; on failure the
// session returns to entering_payment and the cart is kept.
func (s *Service) Confirm(ctx context.Context, customerID string) (*models.OrderConfirmation, *models.CheckoutView, error) {
	unlock := s.lock(customerID)
	sess, err := s.load(ctx, customerID)
	if err != nil {
		unlock()
		return nil, nil, fmt.Errorf("service.Confirm: %w", err)
	}
	if sess.Step != models.StepConfirming || sess.Payment == nil {
		unlock()
		return nil, nil, fmt.Errorf("service.Confirm: %w", sess.transitionError("confirm the order"))
	}

	subCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmissionTimeout)
	defer cancel()
	if !s.register(customerID, cancel) {
		unlock()
		return nil, nil, fmt.Errorf("service.Confirm: %w", models.ErrSubmissionInProgress)
	}
	defer s.unregister(customerID)

	submission := s.submission(sess)
	unlock()

	conf, subErr := s.submitter.Submit(subCtx, submission)
	if subErr == nil && conf == nil {
		subErr = errors.New("submitter returned no confirmation")
	}

	// The outcome is recorded even if the caller has gone away.
	ctx = context.WithoutCancel(ctx)
	unlock = s.lock(customerID)
	defer unlock()
	sess, err = s.load(ctx, customerID)
	if err != nil {
		return nil, nil, fmt.Errorf("service.Confirm: %w", err)
	}

	if subErr != nil {
		msg := submissionMessage(subCtx, subErr)
		s.logger.Warn("order submission failed",
			zap.String("customerID", customerID), zap.String("sessionID", sess.ID), zap.Error(subErr))
		if err := sess.SubmissionFailed(msg, s.now()); err != nil {
			return nil, nil, fmt.Errorf("service.Confirm: %w", err)
		}
		if err := s.store.Save(ctx, sess); err != nil {
			return nil, nil, fmt.Errorf("service.Confirm: %w", err)
		}
		return nil, s.view(sess), fmt.Errorf("service.Confirm: %w: %s", models.ErrSubmissionFailed, msg)
	}

	if err := sess.SubmissionSucceeded(*conf, s.now()); err != nil {
		return nil, nil, fmt.Errorf("service.Confirm: %w", err)
	}
	s.carts.For(customerID).RemoveOrdered(ctx, submission.Cart)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("service.Confirm: %w", err)
	}
	s.logger.Info("order confirmed",
		zap.String("customerID", customerID),
		zap.String("orderID", conf.OrderID),
		zap.String("total", conf.Total.StringFixed(2)),
	)
	return conf, s.view(sess), nil
}

func submissionMessage(ctx context.Context, err error) string {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "Order submission timed out. Your cart has been kept, please try again."
	case errors.Is(ctx.Err(), context.Canceled):
		return "Order submission was cancelled. Your cart has been kept."
	}
	return "We could not place your order. Your cart has been kept, please try again."
}

func (s *Service) register(customerID string, cancel context.CancelFunc) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[customerID]; busy {
		return false
	}
	s.inflight[customerID] = cancel
	return true
}

func (s *Service) submitting(customerID string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	_, busy := s.inflight[customerID]
	return busy
}

func (s *Service) unregister(customerID string) {
	s.inflightMu.Lock()
	delete(s.inflight, customerID)
	s.inflightMu.Unlock()
}

// CancelSubmission aborts an in-flight Confirm. It reports whether there was
// one to cancel.
func (s *Service) CancelSubmission(customerID string) bool {
	s.inflightMu.Lock()
	cancel, ok := s.inflight[customerID]
	s.inflightMu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// BackToCart abandons the attempt and discards any payment details. It is
// refused while a submission is running.
func (s *Service) BackToCart(ctx context.Context, customerID string) (*models.CheckoutView, error) {
	sess, err := s.update(ctx, customerID, func(sess *Session) error {
		if s.submitting(customerID) {
			return models.ErrSubmissionInProgress
		}
		sess.BackToCart(s.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.BackToCart: %w", err)
	}
	return s.view(sess), nil
}

// Discard drops the customer's session entirely; used at logout.
func (s *Service) Discard(ctx context.Context, customerID string) error {
	s.CancelSubmission(customerID)
	unlock := s.lock(customerID)
	defer unlock()
	if err := s.store.Delete(ctx, customerID); err != nil {
		return fmt.Errorf("service.Discard: %w", err)
	}
	return nil
}

func (s *Service) items(sess *Session) []models.LineItem {
	if sess.Step == models.StepReviewingCart {
		return s.carts.For(sess.CustomerID).Items()
	}
	return sess.Cart
}

func (s *Service) quote(sess *Session) pricing.Quote {
	subtotal := pricing.Subtotal(s.items(sess))
	return s.cfg.Fees.Quote(subtotal, sess.CustomerPoint(), sess.VendorLocation)
}

func (s *Service) submission(sess *Session) models.OrderSubmission {
	q := s.quote(sess)
	sub := models.OrderSubmission{
		CustomerID:     sess.CustomerID,
		Cart:           sess.Cart,
		PaymentMethod:  sess.Payment.Method,
		PaymentDetails: *sess.Payment,
		Subtotal:       q.Subtotal,
		DeliveryFee:    q.DeliveryFee,
		HandlingFee:    q.HandlingFee,
		Total:          q.Total,
	}
	if sess.DeliveryLocation != nil {
		sub.DeliveryLocation = *sess.DeliveryLocation
	}
	return sub
}

func (s *Service) view(sess *Session) *models.CheckoutView {
	v := &models.CheckoutView{
		SessionID:        sess.ID,
		Step:             sess.Step,
		Cart:             models.NewCartView(s.items(sess)),
		VendorID:         sess.VendorID,
		DeliveryLocation: sess.DeliveryLocation,
		LocationError:    sess.LocationError,
		Quote:            s.quote(sess),
		SubmissionError:  sess.SubmissionError,
		LastConfirmation: sess.LastConfirmation,
		UpdatedAt:        sess.UpdatedAt,
	}
	if sess.Payment != nil {
		v.PaymentMethod = sess.Payment.Method
	}
	return v
}
