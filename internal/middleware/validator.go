package middleware

import (
	"fmt"

	"github.com/SscSPs/ledger_service/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// AmountTag validates that a string field is a non-negative amount with at most 8 fractional digits.
const AmountTag = "amount8"

// RegisterValidators installs the custom binding tags on gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation(AmountTag, validateAmount)
}

func validateAmount(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := domain.ParseAmount(s)
	return err == nil
}
