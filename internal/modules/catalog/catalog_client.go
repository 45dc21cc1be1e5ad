package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/pricing"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// ClientInterface is what the rest of the application needs from the remote
// product and vendor catalog.
type ClientInterface interface {
	ListFoods(ctx context.Context) ([]models.Product, error)
	GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error)
	VendorLocation(ctx context.Context, vendorID string) (*pricing.Point, error)
}

// Client talks to the catalog REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a catalog client for baseURL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// statusError is returned for non-2xx answers.
type statusError struct {
	code int
	path string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog %s answered %d", e.path, e.code)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode, path: path}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

// ListFoods fetches the product list from /foods, falling back to the older
// /get/foods route. Prices are normalized to numbers; records whose price
// cannot be read are dropped.
func (c *Client) ListFoods(ctx context.Context) ([]models.Product, error) {
	var raw []models.Product
	err := c.getJSON(ctx, "/foods", &raw)
	if isNotFound(err) {
		err = c.getJSON(ctx, "/get/foods", &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog.ListFoods: %w", err)
	}

	products := make([]models.Product, 0, len(raw))
	for _, p := range raw {
		price, err := pricing.ParsePrice(rawPrice(p.Price))
		if err != nil {
			c.logger.Warn("dropping catalog product with unreadable price",
				zap.String("productID", string(p.ID)), zap.ByteString("price", p.Price))
			continue
		}
		p.Price = json.RawMessage(price.String())
		products = append(products, p)
	}
	return products, nil
}

func rawPrice(msg json.RawMessage) any {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	return json.Number(strings.TrimSpace(string(msg)))
}

// GetVendor fetches one vendor record.
func (c *Client) GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	var v models.Vendor
	err := c.getJSON(ctx, "/vendors/"+url.PathEscape(vendorID), &v)
	if isNotFound(err) {
		return nil, fmt.Errorf("catalog.GetVendor: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog.GetVendor: %w: %v", models.ErrVendorUnavailable, err)
	}
	if v.ID == "" {
		v.ID = models.FlexibleID(vendorID)
	}
	return &v, nil
}

// VendorLocation returns the vendor's coordinates, or nil when the record has
// none.
func (c *Client) VendorLocation(ctx context.Context, vendorID string) (*pricing.Point, error) {
	v, err := c.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return v.Location(), nil
}
