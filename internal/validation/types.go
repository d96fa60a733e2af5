package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProductID accepts both JSON encodings callers send: a number (older
// storefront builds) or a string.
type ProductID string

// UnmarshalJSON implements json.Unmarshaler.
func (p *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("productId must be a string or number: %w", err)
	}
	*p = ProductID(n.String())
	return nil
}

// CartItemRequest is one entry of the checkout payload. Quantity is not
// range-checked here: the cart validator owns that rule and its error code.
type CartItemRequest struct {
	ProductID     ProductID `json:"productId" validate:"required"`
	Quantity      int       `json:"quantity"`
	SelectedColor string    `json:"selectedColor,omitempty"`
}

// CreatePurchaseRequest is the payload for POST /payment/create.
// Shape checks live in the validate tags; the precise buyer rules (name
// length, identification, contact) belong to the purchase orchestrator.
type CreatePurchaseRequest struct {
	BuyerEmail                string            `json:"buyerEmail" validate:"required"`
	BuyerName                 string            `json:"buyerName" validate:"required"`
	BuyerIdentificationNumber string            `json:"buyerIdentificationNumber" validate:"required"`
	BuyerContactNumber        string            `json:"buyerContactNumber" validate:"required"`
	ShippingAddress           string            `json:"shippingAddress,omitempty"`
	Items                     []CartItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateClientRequest is the payload for POST /clients.
type CreateClientRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Name                 string `json:"name" validate:"required"`
	IdentificationNumber string `json:"identificationNumber,omitempty"`
	ContactNumber        string `json:"contactNumber,omitempty"`
	Address              string `json:"address,omitempty"`
}

// WebhookEvent is the payment gateway's callback payload.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Transaction struct {
			ID        string `json:"id"`
			Status    string `json:"status"`
			Reference string `json:"reference"`
		} `json:"transaction"`
	} `json:"data"`
}
