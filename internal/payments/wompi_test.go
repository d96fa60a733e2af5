package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWompiCreatePayment(t *testing.T) {
	var gotAuth string
	var gotBody wompiPaymentLinkRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_links" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"link_123"}}`))
	}))
	defer srv.Close()

	c := NewWompiClient(srv.URL, "prv_test_key")
	pay, err := c.CreatePayment(context.Background(), CreatePaymentInput{
		ExternalReference:         "TIENDA-1-abc",
		Amount:                    30000,
		Currency:                  "COP",
		BuyerEmail:                "a@b.com",
		BuyerName:                 "Jo",
		BuyerIdentificationNumber: "123456",
		BuyerContactNumber:        "3001234567",
	})
	if err != nil {
		t.Fatalf("CreatePayment error: %v", err)
	}
	if pay.TransactionID != "link_123" {
		t.Fatalf("transaction id = %q", pay.TransactionID)
	}
	if pay.PaymentURL != "https://checkout.wompi.co/l/link_123" {
		t.Fatalf("payment url = %q", pay.PaymentURL)
	}
	if gotAuth != "Bearer prv_test_key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody.AmountInCents != 3000000 || gotBody.Reference != "TIENDA-1-abc" || !gotBody.SingleUse {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	if gotBody.CustomerData == nil || gotBody.CustomerData.Email != "a@b.com" {
		t.Fatalf("customer data missing: %+v", gotBody.CustomerData)
	}
}

func TestWompiCreatePayment_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"type":"INPUT_VALIDATION_ERROR","reason":"amount_in_cents must be positive"}}`))
	}))
	defer srv.Close()

	c := NewWompiClient(srv.URL, "prv_test_key")
	_, err := c.CreatePayment(context.Background(), CreatePaymentInput{
		ExternalReference: "TIENDA-1-abc",
		Amount:            0,
		Currency:          "COP",
	})
	if err == nil {
		t.Fatal("expected error for 422 response")
	}
}

func TestMapEventStatus(t *testing.T) {
	cases := map[string]string{
		"APPROVED": "APPROVED",
		"DECLINED": "REJECTED",
		"VOIDED":   "CANCELLED",
		"ERROR":    "FAILED",
		"PENDING":  "PENDING",
		"WHATEVER": "",
	}
	for in, want := range cases {
		if got := MapEventStatus(in); got != want {
			t.Fatalf("MapEventStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
