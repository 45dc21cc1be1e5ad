package checkout

import (
	"context"
	"testing"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/pricing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id, vendor, price string) models.LineItem {
	return models.LineItem{
		ID:       id,
		VendorID: vendor,
		Price:    decimal.RequireFromString(price),
		Quantity: 1,
		Variant:  models.VariantImmediate,
	}
}

func TestSessionTransitions(t *testing.T) {
	s := NewSession("s1", "c1", now)
	assert.Equal(t, models.StepReviewingCart, s.Step)

	assert.ErrorIs(t, s.Start(nil, now), models.ErrCartEmpty)
	assert.Equal(t, models.StepReviewingCart, s.Step)

	require.NoError(t, s.Start([]models.LineItem{line("1", "v1", "500")}, now))
	assert.Equal(t, models.StepAcquiringLocation, s.Step)
	assert.Equal(t, "v1", s.VendorID)

	assert.ErrorIs(t, s.PaymentAccepted(models.PaymentSummary{}, now), models.ErrInvalidTransition)
	assert.ErrorIs(t, s.ProceedToPayment(now), models.ErrInvalidTransition)

	require.NoError(t, s.LocationFailed("denied", models.DeliveryLocation{Address: "CBD"}, now))
	assert.Equal(t, models.StepLocationFailed, s.Step)
	assert.Nil(t, s.CustomerPoint())

	require.NoError(t, s.ProceedToPayment(now))
	assert.Equal(t, models.StepEnteringPayment, s.Step)

	require.NoError(t, s.PaymentAccepted(models.PaymentSummary{Method: models.PaymentMpesa, Phone: "07"}, now))
	assert.Equal(t, models.StepConfirming, s.Step)

	require.NoError(t, s.SubmissionFailed("boom", now))
	assert.Equal(t, models.StepEnteringPayment, s.Step)
	assert.Nil(t, s.Payment)
	assert.Len(t, s.Cart, 1)

	require.NoError(t, s.PaymentAccepted(models.PaymentSummary{Method: models.PaymentMpesa, Phone: "07"}, now))
	require.NoError(t, s.SubmissionSucceeded(models.OrderConfirmation{OrderID: "o1"}, now))
	assert.Equal(t, models.StepReviewingCart, s.Step)
	assert.Empty(t, s.Cart)
	require.NotNil(t, s.LastConfirmation)
	assert.Equal(t, "o1", s.LastConfirmation.OrderID)
}

func TestSessionBackToCartDropsPayment(t *testing.T) {
	s := NewSession("s1", "c1", now)
	require.NoError(t, s.Start([]models.LineItem{line("1", "v1", "500")}, now))
	require.NoError(t, s.LocationResolved(models.DeliveryLocation{Lat: 1, Lng: 2}, now))
	require.NoError(t, s.PaymentAccepted(models.PaymentSummary{Method: models.PaymentCard, CardLast4: "3456"}, now))

	s.BackToCart(now)
	assert.Equal(t, models.StepReviewingCart, s.Step)
	assert.Nil(t, s.Payment)
	assert.Nil(t, s.DeliveryLocation)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "c1")
	require.ErrorIs(t, err, models.ErrNotFound)

	s := NewSession("s1", "c1", now)
	require.NoError(t, s.Start([]models.LineItem{line("1", "v1", "500")}, now))
	require.NoError(t, store.Save(ctx, s))

	s.Cart[0].Quantity = 40
	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cart[0].Quantity)

	require.NoError(t, store.Delete(ctx, "c1"))
	_, err = store.Get(ctx, "c1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStoreRoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, 30*time.Minute)

	_, err := store.Get(ctx, "c1")
	require.ErrorIs(t, err, models.ErrNotFound)

	s := NewSession("s1", "c1", now)
	require.NoError(t, s.Start([]models.LineItem{line("1", "v1", "500")}, now))
	s.VendorLocation = &pricing.Point{Lat: -1.28, Lng: 36.82}
	require.NoError(t, s.LocationResolved(models.DeliveryLocation{Lat: -1.3, Lng: 36.8, Address: "Westlands"}, now))
	require.NoError(t, s.PaymentAccepted(models.PaymentSummary{Method: models.PaymentCard, CardLast4: "3456"}, now))
	require.NoError(t, store.Save(ctx, s))

	raw, err := mr.Get(redisKeyPrefix + "c1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "card_number")
	assert.NotContains(t, raw, "cvc")
	assert.Equal(t, 30*time.Minute, mr.TTL(redisKeyPrefix+"c1"))

	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.StepConfirming, got.Step)
	assert.True(t, got.Cart[0].Price.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "3456", got.Payment.CardLast4)
	assert.Equal(t, "Westlands", got.DeliveryLocation.Address)

	mr.FastForward(31 * time.Minute)
	_, err = store.Get(ctx, "c1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Delete(ctx, "c1"))
	assert.False(t, mr.Exists(redisKeyPrefix+"c1"))
}
