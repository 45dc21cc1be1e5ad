package checkout

import (
	"testing"
	"time"

	"delivery-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func validCard() models.PaymentDetails {
	return models.PaymentDetails{
		Method:         models.PaymentCard,
		CardNumber:     "1234567890123456",
		CardholderName: "Jane Doe",
		Expiry:         "12/27",
		CVC:            "123",
	}
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *models.PaymentDetails)
		reasons []string
	}{
		{name: "valid card", mutate: func(p *models.PaymentDetails) {}},
		{name: "16 digits passes", mutate: func(p *models.PaymentDetails) { p.CardNumber = "1234567890123456" }},
		{name: "15 digits", mutate: func(p *models.PaymentDetails) { p.CardNumber = "123456789012345" },
			reasons: []string{"card_number must be exactly 16 digits"}},
		{name: "non digits", mutate: func(p *models.PaymentDetails) { p.CardNumber = "1234-5678-9012-3" },
			reasons: []string{"card_number must be exactly 16 digits"}},
		{name: "past expiry", mutate: func(p *models.PaymentDetails) { p.Expiry = "01/20" },
			reasons: []string{"expiry must not be in the past"}},
		{name: "last month", mutate: func(p *models.PaymentDetails) { p.Expiry = "02/26" },
			reasons: []string{"expiry must not be in the past"}},
		{name: "current month", mutate: func(p *models.PaymentDetails) { p.Expiry = "03/26" }},
		{name: "bad month", mutate: func(p *models.PaymentDetails) { p.Expiry = "13/27" },
			reasons: []string{"expiry must be in MM/YY format"}},
		{name: "short name", mutate: func(p *models.PaymentDetails) { p.CardholderName = "Al" },
			reasons: []string{"cardholder_name must be at least 3 characters"}},
		{name: "four digit cvc", mutate: func(p *models.PaymentDetails) { p.CVC = "1234" }},
		{name: "two digit cvc", mutate: func(p *models.PaymentDetails) { p.CVC = "12" },
			reasons: []string{"cvc must be 3 or 4 digits"}},
		{name: "all wrong", mutate: func(p *models.PaymentDetails) {
			*p = models.PaymentDetails{Method: models.PaymentCard, CardNumber: "1", CardholderName: "A", Expiry: "1/2", CVC: "x"}
		}, reasons: []string{
			"card_number must be exactly 16 digits",
			"cardholder_name must be at least 3 characters",
			"expiry must be in MM/YY format",
			"cvc must be 3 or 4 digits",
		}},
		{name: "mpesa with phone", mutate: func(p *models.PaymentDetails) {
			*p = models.PaymentDetails{Method: models.PaymentMpesa, Phone: "0712345678"}
		}},
		{name: "mpesa blank phone", mutate: func(p *models.PaymentDetails) {
			*p = models.PaymentDetails{Method: models.PaymentMpesa, Phone: "   "}
		}, reasons: []string{"phone is required"}},
		{name: "missing method", mutate: func(p *models.PaymentDetails) { p.Method = "" },
			reasons: []string{"payment_method is required"}},
		{name: "unknown method", mutate: func(p *models.PaymentDetails) { p.Method = "paypal" },
			reasons: []string{"payment_method must be one of: mpesa card"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCard()
			tt.mutate(&p)
			err := ValidatePayment(p, now)
			if len(tt.reasons) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ElementsMatch(t, tt.reasons, verr.Reasons)
		})
	}
}

func TestPaymentSummaryRedactsCard(t *testing.T) {
	s := validCard().Summary()
	assert.Equal(t, "3456", s.CardLast4)
	assert.Equal(t, "Jane Doe", s.CardholderName)
	assert.Empty(t, s.Phone)
}
