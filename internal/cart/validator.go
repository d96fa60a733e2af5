// Package cart resolves an incoming shopping cart against the catalog and
// computes authoritative line pricing.
package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/jpcardenas/tienda-backoffice/internal/apperr"
	"github.com/jpcardenas/tienda-backoffice/internal/catalog"
)

// Validation error codes
const (
	CodeInvalidQuantity    = "invalid_quantity"
	CodeProductNotFound    = "product_not_found"
	CodeProductUnavailable = "product_unavailable"
	CodeColorNotAvailable  = "color_not_available"
)

// Item is one unvalidated cart entry from the request payload.
type Item struct {
	ProductID     string
	Quantity      int
	SelectedColor string
}

// ValidatedItem is an Item resolved against the catalog, with the price
// snapshot taken at validation time.
type ValidatedItem struct {
	ProductID     string
	ProductName   string
	Quantity      int
	UnitPrice     int64
	TotalPrice    int64
	SelectedColor string
}

// ProductFinder is the catalog read access the validator needs.
type ProductFinder interface {
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

// Validator checks cart items against live catalog state.
type Validator struct {
	products ProductFinder
}

// NewValidator creates a Validator reading from the given catalog.
func NewValidator(products ProductFinder) *Validator {
	return &Validator{products: products}
}

// ValidateAndPrice resolves every item sequentially and fails fast on the
// first offending one. Read-only: no writes happen here.
func (v *Validator) ValidateAndPrice(ctx context.Context, items []Item) ([]ValidatedItem, error) {
	validated := make([]ValidatedItem, 0, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, apperr.Validation(CodeInvalidQuantity,
				"item %d: quantity must be greater than zero", i+1)
		}

		product, err := v.products.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("lookup product %s: %w", it.ProductID, err)
		}
		if product == nil {
			return nil, apperr.Validation(CodeProductNotFound,
				"item %d: product %s does not exist", i+1, it.ProductID)
		}
		if !product.Available() {
			return nil, apperr.Validation(CodeProductUnavailable,
				"item %d: product %q is not available", i+1, product.Name)
		}

		if it.SelectedColor != "" && !product.Colors.Contains(it.SelectedColor) {
			// the message carries the original labels so the buyer sees
			// the catalog's spelling, not the normalized form
			return nil, apperr.Validation(CodeColorNotAvailable,
				"item %d: color %q is not available for %q (available: %s)",
				i+1, it.SelectedColor, product.Name, strings.Join(product.Colors, ", "))
		}

		unitPrice := product.Price
		validated = append(validated, ValidatedItem{
			ProductID:     it.ProductID,
			ProductName:   product.Name,
			Quantity:      it.Quantity,
			UnitPrice:     unitPrice,
			TotalPrice:    unitPrice * int64(it.Quantity),
			SelectedColor: it.SelectedColor,
		})
	}
	return validated, nil
}

// Total sums the line totals of validated items.
func Total(items []ValidatedItem) int64 {
	var total int64
	for _, it := range items {
		total += it.TotalPrice
	}
	return total
}
