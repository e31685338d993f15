package helpers

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)

// ShippingForm is the delivery form submitted at checkout.
type ShippingForm struct {
	FullName   string  `json:"fullName" validate:"required,max=120"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      string  `json:"phone" validate:"required,phone"`
	Address    string  `json:"address" validate:"required,max=255"`
	City       string  `json:"city" validate:"required,max=120"`
	PostalCode string  `json:"postalCode" validate:"required,max=20"`
	Country    string  `json:"country" validate:"required,max=80"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// Normalize trims every field and drops blank notes.
func (f ShippingForm) Normalize() ShippingForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Country = strings.TrimSpace(f.Country)
	if f.Notes != nil {
		notes := strings.TrimSpace(*f.Notes)
		if notes == "" {
			f.Notes = nil
		} else {
			f.Notes = &notes
		}
	}
	return f
}

// ValidateShipping checks the form and reports every failing field at once.
func ValidateShipping(form ShippingForm) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping details")
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = message(fe)
	}
	return pkgerrors.Fields("invalid shipping details", fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "phone":
		return "must be a valid phone number"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
