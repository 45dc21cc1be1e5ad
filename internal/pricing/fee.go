package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// EarthRadiusKm is the sphere radius used by HaversineKm.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm returns the great-circle distance between a and b.
func HaversineKm(a, b Point) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RoundToHalf rounds km to the nearest 0.5.
func RoundToHalf(km float64) float64 {
	return math.Round(km*2) / 2
}

// FeeSchedule holds the fee constants. The zero value charges nothing; use
// DefaultFeeSchedule for the marketplace defaults.
type FeeSchedule struct {
	BaseFee     decimal.Decimal
	PerKmRate   decimal.Decimal
	HandlingFee decimal.Decimal
}

// DefaultFeeSchedule returns BASE_FEE=50, PER_KM_RATE=15, HANDLING_FEE=100.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		BaseFee:     decimal.NewFromInt(50),
		PerKmRate:   decimal.NewFromInt(15),
		HandlingFee: decimal.NewFromInt(100),
	}
}

// FeeForDistance charges the base fee plus the per-km rate on the distance
// rounded to the nearest half kilometre.
func (s FeeSchedule) FeeForDistance(km float64) decimal.Decimal {
	rounded := decimal.NewFromFloat(RoundToHalf(km))
	return s.BaseFee.Add(rounded.Mul(s.PerKmRate))
}

// DeliveryFee falls back to the flat base fee when either location is unknown.
func (s FeeSchedule) DeliveryFee(customer, vendor *Point) decimal.Decimal {
	if customer == nil || vendor == nil {
		return s.BaseFee
	}
	return s.FeeForDistance(HaversineKm(*customer, *vendor))
}

// Quote is the priced breakdown of an order.
type Quote struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	HandlingFee decimal.Decimal `json:"handling_fee"`
	Total       decimal.Decimal `json:"total"`
	DistanceKm  *float64        `json:"distance_km,omitempty"`
}

// Quote prices subtotal for the given pair of locations.
func (s FeeSchedule) Quote(subtotal decimal.Decimal, customer, vendor *Point) Quote {
	q := Quote{
		Subtotal:    subtotal,
		DeliveryFee: s.DeliveryFee(customer, vendor),
		HandlingFee: s.HandlingFee,
	}
	if customer != nil && vendor != nil {
		km := RoundToHalf(HaversineKm(*customer, *vendor))
		q.DistanceKm = &km
	}
	q.Total = q.Subtotal.Add(q.DeliveryFee).Add(q.HandlingFee)
	return q
}
