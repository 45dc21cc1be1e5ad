package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"delivery-marketplace/internal/hours"

	"github.com/go-playground/validator/v10"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cvcPattern        = regexp.MustCompile(`^\d{3,4}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

// CustomValidator adapts validator.Validate to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate runs the struct tags of i.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	validatorOnce sync.Once
	validatorInst *CustomValidator
)

// GetValidator returns the shared validator with the project's custom tags:
// clock, card_number, cvc and mmyy.
func GetValidator() *CustomValidator {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
			_, ok := hours.ParseClock(fl.Field().String())
			return ok
		})
		mustRegister(v, "card_number", matches(cardNumberPattern))
		mustRegister(v, "cvc", matches(cvcPattern))
		mustRegister(v, "mmyy", matches(expiryPattern))
		validatorInst = &CustomValidator{validator: v}
	})
	return validatorInst
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// IsCardExpiry reports whether s has the MM/YY shape.
func IsCardExpiry(s string) bool {
	return expiryPattern.MatchString(s)
}

// ValidationReasons turns validator errors into one readable reason per
// field. Other errors are returned as a single reason.
func ValidationReasons(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, reason(fe))
	}
	return reasons
}

func reason(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in the format %s", field, fe.Param())
	case "clock":
		return field + " must be a time such as 18:30 or 6:30pm"
	case "card_number":
		return field + " must be exactly 16 digits"
	case "cvc":
		return field + " must be 3 or 4 digits"
	case "mmyy":
		return field + " must be in MM/YY format"
	}
	return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
}
