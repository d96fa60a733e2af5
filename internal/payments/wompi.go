package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const providerWompi = "wompi"

// WompiClient creates payment links through the Wompi REST API.
// No official Go SDK exists, so this is a thin JSON client.
type WompiClient struct {
	baseURL      string
	checkoutBase string
	privateKey   string
	httpClient   *http.Client
}

// NewWompiClient returns a client for the given API base URL
// (e.g. https://production.wompi.co) authenticated with the merchant's
// private key.
func NewWompiClient(baseURL, privateKey string) *WompiClient {
	return &WompiClient{
		baseURL:      baseURL,
		checkoutBase: "https://checkout.wompi.co",
		privateKey:   privateKey,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Provider returns the gateway name persisted on purchases.
func (c *WompiClient) Provider() string { return providerWompi }

type wompiPaymentLinkRequest struct {
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	SingleUse      bool               `json:"single_use"`
	CollectShipping bool              `json:"collect_shipping"`
	Currency       string             `json:"currency"`
	AmountInCents  int64              `json:"amount_in_cents"`
	Reference      string             `json:"reference"`
	CustomerData   *wompiCustomerData `json:"customer_data,omitempty"`
}

type wompiCustomerData struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	LegalID     string `json:"legal_id"`
	LegalIDType string `json:"legal_id_type"`
	PhoneNumber string `json:"phone_number"`
}

type wompiPaymentLinkResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Error *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// CreatePayment opens a single-use payment link for the purchase.
func (c *WompiClient) CreatePayment(ctx context.Context, in CreatePaymentInput) (*Payment, error) {
	reqBody := wompiPaymentLinkRequest{
		Name:        fmt.Sprintf("Compra %s", in.ExternalReference),
		Description: fmt.Sprintf("Pedido %s", in.ExternalReference),
		SingleUse:   true,
		Currency:    in.Currency,
		// Wompi amounts are in cents; COP prices are whole pesos
		AmountInCents: in.Amount * 100,
		Reference:     in.ExternalReference,
		CustomerData: &wompiCustomerData{
			Email:       in.BuyerEmail,
			FullName:    in.BuyerName,
			LegalID:     in.BuyerIdentificationNumber,
			LegalIDType: "CC",
			PhoneNumber: in.BuyerContactNumber,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal payment link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_links", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build payment link request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.privateKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call wompi: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read wompi response: %w", err)
	}

	var parsed wompiPaymentLinkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode wompi response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil {
			return nil, fmt.Errorf("wompi rejected payment link (status %d): %s", resp.StatusCode, parsed.Error.Reason)
		}
		return nil, fmt.Errorf("wompi returned status %d", resp.StatusCode)
	}
	if parsed.Data.ID == "" {
		return nil, fmt.Errorf("wompi response missing payment link id")
	}

	return &Payment{
		TransactionID: parsed.Data.ID,
		PaymentURL:    fmt.Sprintf("%s/l/%s", c.checkoutBase, parsed.Data.ID),
	}, nil
}
