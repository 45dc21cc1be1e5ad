package cart

import (
	"strings"
	"time"

	"delivery-marketplace/internal/hours"
	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/pricing"
	"delivery-marketplace/pkg/utils"
)

const (
	dateLayout      = "2006-01-02"
	defaultServings = 1
	maxServings     = 8
)

// ValidationResult lists every reason a pre-order form was rejected.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// Err returns a *models.ValidationError, or nil when valid.
func (r ValidationResult) Err() error {
	return models.NewValidationError(r.Reasons)
}

// ValidatePreOrder checks a pre-order form against now. The date must not be
// before today in now's location. Unset servings count as one.
func ValidatePreOrder(form models.PreOrderForm, now time.Time) ValidationResult {
	form = normalize(form)

	reasons := utils.ValidationReasons(utils.GetValidator().Validate(form))

	if d, err := time.ParseInLocation(dateLayout, form.Date, now.Location()); err == nil {
		y, m, day := now.Date()
		today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
		if d.Before(today) {
			reasons = append(reasons, "date must be today or later")
		}
	}

	return ValidationResult{Valid: len(reasons) == 0, Reasons: reasons}
}

// CanConfirm reports whether the confirm action should be enabled: date and
// time present and parseable. It does not check the date against today.
func CanConfirm(form models.PreOrderForm) bool {
	form = normalize(form)
	if _, err := time.Parse(dateLayout, form.Date); err != nil {
		return false
	}
	_, ok := hours.ParseClock(form.Time)
	return ok
}

// NewPreOrderItem builds the pre-order line for req. Quantity carries the
// servings, bounded like the servings selector, so the line total is
// price × servings.
func NewPreOrderItem(req models.PreOrderRequest) (models.LineItem, error) {
	if req.Price == nil {
		return models.LineItem{}, models.NewValidationError([]string{"price is required"})
	}
	form := normalize(req.PreOrderForm)
	item := models.LineItem{
		ID:        string(req.ID),
		VendorID:  string(req.VendorID),
		Title:     req.Title,
		Price:     *req.Price,
		PhotoURLs: req.PhotoURLs,
		Quantity:  pricing.ClampQuantity(form.Servings, defaultServings, maxServings),
		Variant:   models.VariantPreOrder,
		PreOrder: &models.PreOrderDetails{
			Date:         form.Date,
			Time:         form.Time,
			Instructions: form.Instructions,
		},
	}
	if err := item.Validate(); err != nil {
		return models.LineItem{}, err
	}
	return item, nil
}

func normalize(form models.PreOrderForm) models.PreOrderForm {
	form.Date = strings.TrimSpace(form.Date)
	form.Time = strings.TrimSpace(form.Time)
	if form.Servings == 0 {
		form.Servings = defaultServings
	}
	return form
}
