// internal/utils/validator.go
package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Money fields are compared as numbers so gt/gte tags apply to them.
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	validate.RegisterValidation("notblank", validateNotBlank)
	validate.RegisterTagNameFunc(jsonFieldName)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidateSlice validates every element of a slice or map.
func ValidateSlice(s interface{}) error {
	return validate.Var(s, "dive")
}

func decimalValue(v reflect.Value) interface{} {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldPath(e),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

// fieldPath drops the top-level struct name from the namespace so nested
// collection errors read like "[3].quantity".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	i := strings.IndexAny(ns, ".[")
	switch {
	case i < 0:
		return e.Field()
	case i == 0:
		return ns
	case ns[i] == '.':
		return ns[i+1:]
	default:
		return ns[i:]
	}
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "oneof":
		return e.Field() + " must be one of " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
