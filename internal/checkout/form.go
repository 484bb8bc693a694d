package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PaymentCOD is the only payment method the storefront offers.
const PaymentCOD = "cod"

// ErrInvalidOrder marks checkout input that cannot be submitted.
var ErrInvalidOrder = errors.New("checkout: invalid order")

// Form is the shopper's checkout input.
type Form struct {
	FirstName     string `json:"firstName" validate:"required,max=80"`
	LastName      string `json:"lastName" validate:"required,max=80"`
	Phone         string `json:"phone" validate:"required,phone"`
	Email         string `json:"email" validate:"omitempty,email,max=254"`
	Address       string `json:"address" validate:"required,min=5,max=200"`
	City          string `json:"city" validate:"required,max=80"`
	Governorate   string `json:"governorate" validate:"required,max=80"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cod"`
	Notes         string `json:"notes" validate:"max=500"`
}

// ValidationError lists the invalid fields keyed by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("checkout: invalid fields: %s", strings.Join(names, ", "))
}

// Unwrap lets errors.Is(err, ErrInvalidOrder) match.
func (e *ValidationError) Unwrap() error { return ErrInvalidOrder }

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Normalize trims every field and defaults the payment method.
func (f Form) Normalize() Form {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.Governorate = strings.TrimSpace(f.Governorate)
	f.PaymentMethod = strings.ToLower(strings.TrimSpace(f.PaymentMethod))
	if f.PaymentMethod == "" {
		f.PaymentMethod = PaymentCOD
	}
	f.Notes = strings.TrimSpace(f.Notes)
	return f
}

// Validate checks a normalized form.
func (f Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "invalid email"
	case "phone":
		return "invalid phone number"
	case "min":
		return fmt.Sprintf("minimum length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum length is %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
