package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// struct-level validation for CreatePurchaseRequest: `required` accepts
	// whitespace-only strings, so blank buyer fields need an explicit check.
	v.RegisterStructValidation(createPurchaseStructValidation, CreatePurchaseRequest{})

	return v
}

func createPurchaseStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreatePurchaseRequest)

	if strings.TrimSpace(req.BuyerName) == "" {
		sl.ReportError(req.BuyerName, "buyerName", "BuyerName", "not_blank", "")
	}
	if strings.TrimSpace(req.BuyerEmail) == "" {
		sl.ReportError(req.BuyerEmail, "buyerEmail", "BuyerEmail", "not_blank", "")
	}
}
