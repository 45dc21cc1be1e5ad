package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/pkg/email"
	"delivery-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	referenceBytes   = 4
	emailTimeout     = 10 * time.Second
)

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	Submit(ctx context.Context, sub models.OrderSubmission) (*models.OrderConfirmation, error)
	GetOrderDetails(ctx context.Context, orderID, customerID string) (*models.Order, error)
	ListCustomerOrders(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error)
	CancelOrder(ctx context.Context, orderID, customerID string) error
}

// AccountLookup resolves the customer that receives the confirmation email.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// Service implements the order service logic.
type Service struct {
	repo      RepositoryInterface
	accounts  AccountLookup
	sender    email.Sender
	templates *email.TemplateManager
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new order service. accounts, sender and templates may
// be nil, in which case no confirmation email is sent.
func NewService(repo RepositoryInterface, accounts AccountLookup, sender email.Sender, templates *email.TemplateManager, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		accounts:  accounts,
		sender:    sender,
		templates: templates,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit stores a checkout submission as a placed order.
func (s *Service) Submit(ctx context.Context, sub models.OrderSubmission) (*models.OrderConfirmation, error) {
	if len(sub.Cart) == 0 {
		return nil, fmt.Errorf("service.Submit: %w", models.ErrCartEmpty)
	}

	ref, err := utils.GenerateSecureToken(referenceBytes)
	if err != nil {
		return nil, fmt.Errorf("service.Submit: %w", err)
	}

	order := &models.Order{
		ID:               uuid.NewString(),
		Reference:        strings.ToUpper(ref),
		CustomerID:       sub.CustomerID,
		Status:           models.OrderStatusPlaced,
		Items:            sub.Cart,
		DeliveryLocation: sub.DeliveryLocation,
		Payment:          sub.PaymentDetails,
		Subtotal:         sub.Subtotal,
		DeliveryFee:      sub.DeliveryFee,
		HandlingFee:      sub.HandlingFee,
		Total:            sub.Total,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("service.Submit: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("orderID", created.ID),
		zap.String("reference", created.Reference),
		zap.String("customerID", created.CustomerID),
		zap.String("total", created.Total.String()))

	go s.sendConfirmation(context.WithoutCancel(ctx), created)

	confirmedAt := created.CreatedAt
	if confirmedAt.IsZero() {
		confirmedAt = s.now()
	}
	return &models.OrderConfirmation{
		OrderID:     created.ID,
		Reference:   created.Reference,
		Total:       created.Total,
		ConfirmedAt: confirmedAt,
	}, nil
}

// sendConfirmation is best effort; failures are only logged.
func (s *Service) sendConfirmation(ctx context.Context, order *models.Order) {
	if s.accounts == nil || s.sender == nil || s.templates == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, emailTimeout)
	defer cancel()

	account, err := s.accounts.FindByID(ctx, order.CustomerID)
	if err != nil {
		s.logger.Warn("No account for order confirmation", zap.String("orderID", order.ID), zap.Error(err))
		return
	}

	data := confirmationData(account.Name, order)
	html, err := s.templates.GenerateOrderConfirmationHTML(data)
	if err != nil {
		s.logger.Error("Failed to render order confirmation", zap.String("orderID", order.ID), zap.Error(err))
		return
	}

	subject := fmt.Sprintf("Your order %s", order.Reference)
	if err := s.sender.SendEmail(ctx, account.Email, subject, email.OrderConfirmationText(data), html); err != nil {
		s.logger.Warn("Order confirmation email not sent", zap.String("orderID", order.ID), zap.Error(err))
	}
}

func confirmationData(name string, order *models.Order) email.OrderEmailData {
	lines := make([]email.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		line := email.OrderLine{
			Title:    item.Title,
			Quantity: item.Quantity,
			Total:    item.LineTotal().StringFixed(2),
		}
		if item.PreOrder != nil {
			line.PreOrder = fmt.Sprintf("Pre-order for %s at %s", item.PreOrder.Date, item.PreOrder.Time)
		}
		lines = append(lines, line)
	}
	return email.OrderEmailData{
		Name:        name,
		Reference:   order.Reference,
		Address:     order.DeliveryLocation.Address,
		Lines:       lines,
		Subtotal:    order.Subtotal.StringFixed(2),
		DeliveryFee: order.DeliveryFee.StringFixed(2),
		HandlingFee: order.HandlingFee.StringFixed(2),
		Total:       order.Total.StringFixed(2),
	}
}

// GetOrderDetails returns an order owned by customerID. Orders of other
// customers are reported as not found.
func (s *Service) GetOrderDetails(ctx context.Context, orderID, customerID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetOrderDetails: %w", err)
	}
	if order.CustomerID != customerID {
		return nil, fmt.Errorf("service.GetOrderDetails: %w", models.ErrNotFound)
	}
	return order, nil
}

func (s *Service) ListCustomerOrders(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	orders, total, err := s.repo.ListByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListCustomerOrders: %w", err)
	}
	return orders, total, nil
}

// CancelOrder cancels an order that is still placed.
func (s *Service) CancelOrder(ctx context.Context, orderID, customerID string) error {
	order, err := s.GetOrderDetails(ctx, orderID, customerID)
	if err != nil {
		return fmt.Errorf("service.CancelOrder: %w", err)
	}
	if order.Status != models.OrderStatusPlaced {
		return fmt.Errorf("service.CancelOrder: %w", models.ErrOrderCannotBeCancelled)
	}
	if err := s.repo.UpdateStatusForCustomer(ctx, orderID, customerID, models.OrderStatusCancelled); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("service.CancelOrder: %w", models.ErrNotFound)
		}
		return fmt.Errorf("service.CancelOrder: %w", err)
	}
	s.logger.Info("Order cancelled", zap.String("orderID", orderID), zap.String("customerID", customerID))
	return nil
}
