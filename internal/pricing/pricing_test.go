package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLine struct {
	price decimal.Decimal
	qty   int
}

func (l testLine) LineTotal() decimal.Decimal { return LineTotal(l.price, l.qty) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSubtotal(t *testing.T) {
	lines := []testLine{
		{price: dec("500"), qty: 3},
		{price: dec("12.5"), qty: 2},
	}
	assert.True(t, Subtotal(lines).Equal(dec("1525")), "got %s", Subtotal(lines))
	assert.True(t, Subtotal([]testLine{}).IsZero())
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(0, 1, 8))
	assert.Equal(t, 8, ClampQuantity(12, 1, 8))
	assert.Equal(t, 5, ClampQuantity(5, 1, 8))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  string
		isErr bool
	}{
		{name: "string", in: " 450 ", want: "450"},
		{name: "float", in: 450.5, want: "450.5"},
		{name: "int", in: 12, want: "12"},
		{name: "json number", in: json.Number("99.90"), want: "99.9"},
		{name: "garbage", in: "free", isErr: true},
		{name: "negative", in: -1, isErr: true},
		{name: "nil", in: nil, isErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.isErr {
				require.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestHaversineKm(t *testing.T) {
	oneDegree := HaversineKm(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 1})
	assert.InDelta(t, 111.195, oneDegree, 0.01)

	nairobi := Point{Lat: -1.2921, Lng: 36.8219}
	mombasa := Point{Lat: -4.0435, Lng: 39.6682}
	assert.InDelta(t, 440, HaversineKm(nairobi, mombasa), 2)
	assert.Zero(t, HaversineKm(nairobi, nairobi))
}

func TestRoundToHalf(t *testing.T) {
	assert.Equal(t, 2.0, RoundToHalf(2.2))
	assert.Equal(t, 2.5, RoundToHalf(2.3))
	assert.Equal(t, 2.5, RoundToHalf(2.7))
	assert.Equal(t, 3.0, RoundToHalf(2.8))
	assert.Equal(t, 0.0, RoundToHalf(0.1))
}

func TestFeeForDistance(t *testing.T) {
	s := DefaultFeeSchedule()
	assert.True(t, s.FeeForDistance(2.3).Equal(dec("87.5")), "got %s", s.FeeForDistance(2.3))
	assert.True(t, s.FeeForDistance(2.2).Equal(dec("80")), "got %s", s.FeeForDistance(2.2))
}

func TestDeliveryFeeFallsBackWithoutLocations(t *testing.T) {
	s := DefaultFeeSchedule()
	vendor := &Point{Lat: -1.28, Lng: 36.82}

	assert.True(t, s.DeliveryFee(nil, vendor).Equal(dec("50")))
	assert.True(t, s.DeliveryFee(vendor, nil).Equal(dec("50")))
	assert.True(t, s.DeliveryFee(nil, nil).Equal(dec("50")))
}

func TestDeliveryFeeIsMonotonicInDistance(t *testing.T) {
	s := DefaultFeeSchedule()
	vendor := &Point{Lat: -1.2921, Lng: 36.8219}

	prevFee := decimal.Zero
	prevDist := -1.0
	for i := 0; i <= 200; i++ {
		customer := &Point{Lat: vendor.Lat + float64(i)*0.0013, Lng: vendor.Lng}
		dist := HaversineKm(*customer, *vendor)
		fee := s.DeliveryFee(customer, vendor)

		require.Greater(t, dist, prevDist)
		require.True(t, fee.GreaterThanOrEqual(prevFee), "fee dropped from %s to %s at %.3f km", prevFee, fee, dist)
		prevFee, prevDist = fee, dist
	}
}

func TestQuote(t *testing.T) {
	s := DefaultFeeSchedule()

	q := s.Quote(dec("1500"), nil, nil)
	assert.True(t, q.DeliveryFee.Equal(dec("50")))
	assert.True(t, q.HandlingFee.Equal(dec("100")))
	assert.True(t, q.Total.Equal(dec("1650")))
	assert.Nil(t, q.DistanceKm)

	vendor := &Point{Lat: 0, Lng: 0}
	customer := &Point{Lat: 0, Lng: 0.01} // ~1.11 km
	q = s.Quote(dec("100"), customer, vendor)
	require.NotNil(t, q.DistanceKm)
	assert.Equal(t, 1.0, *q.DistanceKm)
	assert.True(t, q.DeliveryFee.Equal(dec("65")), "got %s", q.DeliveryFee)
	assert.True(t, q.Total.Equal(dec("265")), "got %s", q.Total)
}
