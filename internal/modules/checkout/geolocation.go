package checkout

import (
	"context"
	"errors"
	"fmt"

	"delivery-marketplace/internal/models"
)

// Coordinates is what a geolocation provider yields.
type Coordinates struct {
	Lat     float64
	Lng     float64
	Address string
}

// GeolocationProvider produces the customer's position. Implementations may
// block; the service bounds every call with a timeout.
type GeolocationProvider interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// GeolocationError carries the device error code.
type GeolocationError struct {
	Code    models.GeolocationErrorCode
	Message string
}

func (e *GeolocationError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GeolocationError) Unwrap() error { return models.ErrLocationUnavailable }

// ReportedLocation is the provider for a position the client already
// resolved on the device and posted to the API.
type ReportedLocation models.LocationReport

func (r ReportedLocation) Locate(ctx context.Context) (Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return Coordinates{}, err
	}
	if r.Error != "" {
		return Coordinates{}, &GeolocationError{Code: normalizeCode(r.Error), Message: r.Message}
	}
	if r.Lat == nil || r.Lng == nil {
		return Coordinates{}, &GeolocationError{Code: models.GeoPositionUnavailable, Message: "no coordinates reported"}
	}
	lat, lng := *r.Lat, *r.Lng
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Coordinates{}, &GeolocationError{Code: models.GeoPositionUnavailable, Message: "coordinates out of range"}
	}
	address := r.Address
	if address == "" {
		address = fmt.Sprintf("%.5f, %.5f", lat, lng)
	}
	return Coordinates{Lat: lat, Lng: lng, Address: address}, nil
}

func normalizeCode(code models.GeolocationErrorCode) models.GeolocationErrorCode {
	switch code {
	case models.GeoPermissionDenied, models.GeoPositionUnavailable, models.GeoTimeout:
		return code
	}
	return models.GeoUnknown
}

// locateWithTimeout never waits longer than ctx allows, even for providers
// that ignore cancellation.
func locateWithTimeout(ctx context.Context, p GeolocationProvider) (Coordinates, error) {
	type result struct {
		coords Coordinates
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := p.Locate(ctx)
		ch <- result{c, err}
	}()

	select {
	case r := <-ch:
		if errors.Is(r.err, context.DeadlineExceeded) {
			return Coordinates{}, &GeolocationError{Code: models.GeoTimeout, Message: "location request timed out"}
		}
		return r.coords, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Coordinates{}, &GeolocationError{Code: models.GeoTimeout, Message: "location request timed out"}
		}
		return Coordinates{}, ctx.Err()
	}
}
