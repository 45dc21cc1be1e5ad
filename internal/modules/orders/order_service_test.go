package orders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/pkg/email"
	"delivery-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	args := m.Called(ctx, order)
	if fn, ok := args.Get(0).(func(context.Context, *models.Order) *models.Order); ok {
		return fn(ctx, order), args.Error(1)
	}
	if o := args.Get(0); o != nil {
		return o.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) ListByCustomerID(ctx context.Context, customerID string, page, limit int) ([]*models.Order, int, error) {
	args := m.Called(ctx, customerID, page, limit)
	return args.Get(0).([]*models.Order), args.Int(1), args.Error(2)
}

func (m *mockRepo) UpdateStatusForCustomer(ctx context.Context, orderID, customerID, status string) error {
	return m.Called(ctx, orderID, customerID, status).Error(0)
}

type stubAccounts map[string]*models.Account

func (s stubAccounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	if a, ok := s[id]; ok {
		return a, nil
	}
	return nil, models.ErrNotFound
}

type sentEmail struct {
	to, subject, text, html string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (r *recordingSender) SendEmail(_ context.Context, to, subject, text, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEmail{to, subject, text, html})
	return nil
}

func (r *recordingSender) emails() []sentEmail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentEmail(nil), r.sent...)
}

func submission() models.OrderSubmission {
	return models.OrderSubmission{
		CustomerID: "cust-1",
		Cart: []models.LineItem{
			{ID: "1", VendorID: "7", Title: "Pilau", Price: decimal.NewFromInt(450), Quantity: 1, Variant: models.VariantImmediate},
			{ID: "2", VendorID: "7", Title: "Chapati", Price: decimal.NewFromInt(50), Quantity: 3, Variant: models.VariantPreOrder,
				PreOrder: &models.PreOrderDetails{Date: "2026-03-20", Time: "18:30"}},
		},
		DeliveryLocation: models.DeliveryLocation{Lat: -1.28, Lng: 36.82, Address: "Moi Avenue"},
		PaymentMethod:    models.PaymentMpesa,
		PaymentDetails:   models.PaymentSummary{Method: models.PaymentMpesa, Phone: "0712345678"},
		Subtotal:         decimal.NewFromInt(600),
		DeliveryFee:      decimal.NewFromInt(65),
		HandlingFee:      decimal.NewFromInt(100),
		Total:            decimal.NewFromInt(765),
	}
}

func newTestService(t *testing.T, repo *mockRepo, sender email.Sender) *Service {
	t.Helper()
	tm, err := email.NewTemplateManager()
	require.NoError(t, err)
	accounts := stubAccounts{"cust-1": {ID: "cust-1", Name: "Wanjiku", Email: "wanjiku@example.com"}}
	return NewService(repo, accounts, sender, tm, zap.NewNop())
}

func TestSubmitPlacesOrderAndEmailsCustomer(t *testing.T) {
	repo := new(mockRepo)
	sender := &recordingSender{}
	svc := newTestService(t, repo, sender)
	placedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.Status == models.OrderStatusPlaced && len(o.Reference) == 8 && o.CustomerID == "cust-1"
	})).Return(func(_ context.Context, o *models.Order) *models.Order {
		stored := *o
		stored.CreatedAt = placedAt
		return &stored
	}, nil)

	conf, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)

	_, err = uuid.Parse(conf.OrderID)
	assert.NoError(t, err)
	assert.True(t, conf.Total.Equal(decimal.NewFromInt(765)))
	assert.Equal(t, placedAt, conf.ConfirmedAt)
	repo.AssertExpectations(t)

	require.Eventually(t, func() bool { return len(sender.emails()) == 1 }, time.Second, 10*time.Millisecond)
	sent := sender.emails()[0]
	assert.Equal(t, "wanjiku@example.com", sent.to)
	assert.Contains(t, sent.subject, conf.Reference)
	assert.Contains(t, sent.text, "3 x Chapati  KES 150.00")
	assert.Contains(t, sent.html, "Pre-order for 2026-03-20 at 18:30")
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(t, repo, &recordingSender{})

	sub := submission()
	sub.Cart = nil
	_, err := svc.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, models.ErrCartEmpty)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitRepositoryFailure(t *testing.T) {
	repo := new(mockRepo)
	sender := &recordingSender{}
	svc := newTestService(t, repo, sender)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.Submit(context.Background(), submission())
	assert.Error(t, err)
	assert.Empty(t, sender.emails())
}

func TestGetOrderDetailsHidesOtherCustomers(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(t, repo, nil)
	repo.On("FindByID", mock.Anything, "o-1").Return(&models.Order{ID: "o-1", CustomerID: "cust-2"}, nil)

	_, err := svc.GetOrderDetails(context.Background(), "o-1", "cust-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("placed", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(t, repo, nil)
		repo.On("FindByID", mock.Anything, "o-1").Return(&models.Order{ID: "o-1", CustomerID: "cust-1", Status: models.OrderStatusPlaced}, nil)
		repo.On("UpdateStatusForCustomer", mock.Anything, "o-1", "cust-1", models.OrderStatusCancelled).Return(nil)

		require.NoError(t, svc.CancelOrder(ctx, "o-1", "cust-1"))
		repo.AssertExpectations(t)
	})

	t.Run("already cancelled", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(t, repo, nil)
		repo.On("FindByID", mock.Anything, "o-1").Return(&models.Order{ID: "o-1", CustomerID: "cust-1", Status: models.OrderStatusCancelled}, nil)

		err := svc.CancelOrder(ctx, "o-1", "cust-1")
		assert.ErrorIs(t, err, models.ErrOrderCannotBeCancelled)
		repo.AssertNotCalled(t, "UpdateStatusForCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListCustomerOrdersDefaults(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(t, repo, nil)
	repo.On("ListByCustomerID", mock.Anything, "cust-1", 1, defaultPageLimit).Return([]*models.Order{{ID: "o-1"}}, 1, nil)

	orders, total, err := svc.ListCustomerOrders(context.Background(), "cust-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, total)
}

func TestHandlerCancelOrder(t *testing.T) {
	repo := new(mockRepo)
	h := NewHandler(newTestService(t, repo, nil))
	orderID := uuid.NewString()
	repo.On("FindByID", mock.Anything, orderID).Return(&models.Order{ID: orderID, CustomerID: "cust-1", Status: "delivered"}, nil)

	e := echo.New()
	newCtx := func(id string) (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodPut, "/orders/"+id+"/cancel", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("orderId")
		c.SetParamValues(id)
		c.Set(utils.SessionContextKey, models.Session{CustomerID: "cust-1"})
		return c, rec
	}

	c, rec := newCtx("not-a-uuid")
	require.NoError(t, h.CancelOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newCtx(orderID)
	require.NoError(t, h.CancelOrder(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
