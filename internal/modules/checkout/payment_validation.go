package checkout

import (
	"strconv"
	"strings"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/pkg/utils"
)

type paymentMethodForm struct {
	Method models.PaymentMethod `json:"payment_method" validate:"required,oneof=mpesa card"`
}

type mpesaForm struct {
	Phone string `json:"phone" validate:"required"`
}

type cardForm struct {
	CardNumber     string `json:"card_number" validate:"required,card_number"`
	CardholderName string `json:"cardholder_name" validate:"required,min=3"`
	Expiry         string `json:"expiry" validate:"required,mmyy"`
	CVC            string `json:"cvc" validate:"required,cvc"`
}

// ValidatePayment reports every problem with p as a *models.ValidationError.
// Card expiry is compared by month against now.
func ValidatePayment(p models.PaymentDetails, now time.Time) error {
	v := utils.GetValidator()
	if err := v.Validate(paymentMethodForm{Method: p.Method}); err != nil {
		return models.NewValidationError(utils.ValidationReasons(err))
	}

	var reasons []string
	switch p.Method {
	case models.PaymentMpesa:
		form := mpesaForm{Phone: strings.TrimSpace(p.Phone)}
		reasons = utils.ValidationReasons(v.Validate(form))
	case models.PaymentCard:
		form := cardForm{
			CardNumber:     p.CardNumber,
			CardholderName: p.CardholderName,
			Expiry:         p.Expiry,
			CVC:            p.CVC,
		}
		reasons = utils.ValidationReasons(v.Validate(form))
		if utils.IsCardExpiry(p.Expiry) && expired(p.Expiry, now) {
			reasons = append(reasons, "expiry must not be in the past")
		}
	}
	return models.NewValidationError(reasons)
}

// expired expects a well-formed MM/YY value.
func expired(expiry string, now time.Time) bool {
	month, _ := strconv.Atoi(expiry[:2])
	yy, _ := strconv.Atoi(expiry[3:])
	year := 2000 + yy
	return year < now.Year() || (year == now.Year() && time.Month(month) < now.Month())
}
