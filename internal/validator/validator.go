package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New creates a new validator instance with custom validations registered.
// Field names in errors are taken from the json tag, then the query tag,
// so messages name fields the way clients send them.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(wireName)

	// Register custom "notblank" validator - rejects whitespace-only strings
	// such as a coupon code or user id made of spaces
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	return v
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "query"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
