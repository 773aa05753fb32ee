// Package validator adapts go-playground/validator to echo's Validator.
package validator

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator wraps a validator instance for echo
type CustomValidator struct {
	validate *validator.Validate
}

// New creates the echo validator
func New() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate validates the given struct, translating failures to HTTP 400
func (v *CustomValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}
