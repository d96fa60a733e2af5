package main

// Message types the worker understands.
const (
	TypePaymentUpdated = "payment.updated"
	TypePurchaseSweep  = "purchase.sweep"
)

// PaymentEventMessage is the payload sent from API -> SQS -> Worker.
// For sweep commands only Type is set.
type PaymentEventMessage struct {
	Type              string `json:"type"`
	TransactionID     string `json:"transaction_id,omitempty"`
	Status            string `json:"status,omitempty"`
	ExternalReference string `json:"external_reference,omitempty"`
}
