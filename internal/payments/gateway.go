// Package payments is the boundary to the external payment provider.
package payments

import "context"

// CreatePaymentInput carries what the provider needs to open a transaction.
type CreatePaymentInput struct {
	ExternalReference         string
	Amount                    int64 // integer currency units
	Currency                  string
	BuyerEmail                string
	BuyerName                 string
	BuyerIdentificationNumber string
	BuyerContactNumber        string
}

// Payment is the provider's answer: its transaction id and where to send the
// buyer to pay.
type Payment struct {
	TransactionID string
	PaymentURL    string
}

// Gateway creates remote payment transactions. A failure here fails the whole
// purchase creation; retries are the caller's concern, not the gateway's.
type Gateway interface {
	CreatePayment(ctx context.Context, in CreatePaymentInput) (*Payment, error)
	Provider() string
}
