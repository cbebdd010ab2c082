package validator

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/project-planner/internal/model"
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Register custom "notblank" validator - rejects whitespace-only strings
	// This is used for fields like coupon names that must have meaningful content
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// "minchars=N" requires at least N non-whitespace characters anywhere in
	// the string, so "a b" has two and " a " has one.
	_ = v.RegisterValidation("minchars", func(fl validator.FieldLevel) bool {
		min, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return model.NameChars(fl.Field().String()) >= min
	})

	return v
}
