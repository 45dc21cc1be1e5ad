package catalog

import (
	"context"
	"fmt"

	"delivery-marketplace/internal/hours"
	"delivery-marketplace/internal/models"
)

// AvailabilityService answers "is this vendor open" from the hours monitor,
// fetching and tracking vendors on first request.
type AvailabilityService struct {
	client  ClientInterface
	monitor *hours.Monitor
}

func NewAvailabilityService(client ClientInterface, monitor *hours.Monitor) *AvailabilityService {
	return &AvailabilityService{client: client, monitor: monitor}
}

// Availability returns the latest evaluation for vendorID. Vendors with
// unreadable hours are reported closed.
func (s *AvailabilityService) Availability(ctx context.Context, vendorID string) (*models.VendorAvailability, error) {
	if a, ok := s.monitor.Availability(vendorID); ok {
		return &a, nil
	}
	v, err := s.client.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("service.Availability: %w", err)
	}
	a := s.monitor.Track(vendorID, v.OpeningHours, v.Timezone)
	return &a, nil
}
