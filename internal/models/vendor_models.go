package models

import (
	"encoding/json"

	"delivery-marketplace/internal/pricing"
)

// Product is a catalog record as served by GET /foods. Price, Discount and
// Stock are left raw because the backend sends both numbers and strings.
type Product struct {
	ID        FlexibleID      `json:"id"`
	Title     string          `json:"title"`
	Price     json.RawMessage `json:"price"`
	Area      string          `json:"area,omitempty"`
	Category  string          `json:"category,omitempty"`
	PhotoURLs []string        `json:"photoUrls"`
	Vendor    VendorRef       `json:"vendor"`
	Discount  json.RawMessage `json:"discount,omitempty"`
	Stock     json.RawMessage `json:"stock,omitempty"`
}

// VendorRef is the vendor summary embedded in a product record.
type VendorRef struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Vendor is a chef, restaurant or liquor store.
type Vendor struct {
	ID           FlexibleID `json:"id"`
	Name         string     `json:"name"`
	Lat          *float64   `json:"lat"`
	Lng          *float64   `json:"lng"`
	OpeningHours string     `json:"openingHours"`
	Timezone     string     `json:"timezone"`
}

// Location returns nil when the vendor record has no coordinates.
func (v Vendor) Location() *pricing.Point {
	if v.Lat == nil || v.Lng == nil {
		return nil
	}
	return &pricing.Point{Lat: *v.Lat, Lng: *v.Lng}
}

// VendorAvailability is the availability badge of a vendor card.
type VendorAvailability struct {
	VendorID     string `json:"vendor_id"`
	OpeningHours string `json:"opening_hours"`
	Timezone     string `json:"timezone"`
	IsOpen       bool   `json:"is_open"`
	ClosingIn    string `json:"closing_in,omitempty"`
}
