package purchases

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpcardenas/tienda-backoffice/internal/apperr"
	"github.com/jpcardenas/tienda-backoffice/internal/aws"
	"github.com/jpcardenas/tienda-backoffice/internal/cart"
	"github.com/jpcardenas/tienda-backoffice/internal/payments"
)

// Request-level validation error codes
const (
	CodeEmptyCart             = "empty_cart"
	CodeInvalidEmail          = "invalid_email"
	CodeInvalidName           = "invalid_name"
	CodeInvalidIdentification = "invalid_identification"
	CodeInvalidContact        = "invalid_contact"
)

const (
	currencyCOP       = "COP"
	referencePrefix   = "TIENDA"
	minNameLength     = 2
	minIdentification = 6
	minContact        = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CreatePurchaseRequest is the checkout input after HTTP binding.
type CreatePurchaseRequest struct {
	BuyerEmail                string
	BuyerName                 string
	BuyerIdentificationNumber string
	BuyerContactNumber        string
	ShippingAddress           string
	Items                     []cart.Item
}

// PurchaseLine is the per-item breakdown returned to the caller.
type PurchaseLine struct {
	ProductName   string `json:"productName"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unitPrice"`
	TotalPrice    int64  `json:"totalPrice"`
	SelectedColor string `json:"selectedColor,omitempty"`
}

// CreatePurchaseResult composes everything the HTTP layer needs to answer a
// successful checkout.
type CreatePurchaseResult struct {
	PurchaseID    string
	TransactionID string
	PaymentURL    string
	Provider      string
	TotalAmount   int64
	Currency      string
	Status        string
	OrderStatus   string
	Items         []PurchaseLine
}

// Service is the purchase orchestrator: it sequences cart validation,
// persistence, the gateway call and reconciliation.
type Service struct {
	store     *Store
	validator *cart.Validator
	gateway   payments.Gateway
	metrics   *aws.Metrics
	nowFunc   func() time.Time
	newID     func() string
}

// NewService wires the orchestrator. metrics may be nil.
func NewService(store *Store, validator *cart.Validator, gateway payments.Gateway, metrics *aws.Metrics) *Service {
	return &Service{
		store:     store,
		validator: validator,
		gateway:   gateway,
		metrics:   metrics,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// NewReconciler wires a Service for callers that only reconcile payment
// statuses (the SQS worker); no cart validator or gateway is needed there.
func NewReconciler(store *Store, metrics *aws.Metrics) *Service {
	return &Service{
		store:   store,
		metrics: metrics,
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}
}

// CreatePurchase runs the checkout workflow:
// validate request -> validate+price cart -> persist header+details in one
// transaction -> create the remote payment -> attach the transaction id.
// If the gateway call fails, the committed rows are deleted again in one
// transaction so no partial purchase stays observable.
func (s *Service) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*CreatePurchaseResult, error) {
	if err := validateBuyer(req); err != nil {
		return nil, err
	}

	validated, err := s.validator.ValidateAndPrice(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	totalAmount := cart.Total(validated)
	externalReference := s.newExternalReference()
	purchaseID := s.newID()
	now := s.nowFunc()

	purchase := Purchase{
		PurchaseID:                purchaseID,
		BuyerEmail:                req.BuyerEmail,
		BuyerName:                 strings.TrimSpace(req.BuyerName),
		BuyerIdentificationNumber: req.BuyerIdentificationNumber,
		BuyerContactNumber:        req.BuyerContactNumber,
		ShippingAddress:           req.ShippingAddress,
		Status:                    StatusPending,
		OrderStatus:               OrderStatusPending,
		Amount:                    totalAmount,
		Currency:                  currencyCOP,
		PaymentProvider:           s.gateway.Provider(),
		ExternalReference:         externalReference,
		CreatedAt:                 now,
	}

	details := make([]OrderDetail, 0, len(validated))
	detailIDs := make([]string, 0, len(validated))
	for _, it := range validated {
		id := s.newID()
		detailIDs = append(detailIDs, id)
		details = append(details, OrderDetail{
			DetailID:      id,
			PurchaseID:    purchaseID,
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			TotalPrice:    it.TotalPrice,
			SelectedColor: it.SelectedColor,
			CreatedAt:     now,
		})
	}

	if err := s.store.CreateWithDetails(ctx, purchase, details); err != nil {
		s.metrics.CountPurchase(ctx, aws.OutcomeFailed)
		return nil, fmt.Errorf("persist purchase: %w", err)
	}

	payment, err := s.gateway.CreatePayment(ctx, payments.CreatePaymentInput{
		ExternalReference:         externalReference,
		Amount:                    totalAmount,
		Currency:                  currencyCOP,
		BuyerEmail:                req.BuyerEmail,
		BuyerName:                 purchase.BuyerName,
		BuyerIdentificationNumber: req.BuyerIdentificationNumber,
		BuyerContactNumber:        req.BuyerContactNumber,
	})
	if err != nil {
		// roll the committed rows back; the sweep covers the crash window
		if delErr := s.store.DeleteWithDetails(ctx, purchaseID, detailIDs); delErr != nil {
			log.Printf("[purchases] compensation delete failed purchase=%s: %v", purchaseID, delErr)
		}
		s.metrics.CountPurchase(ctx, aws.OutcomeFailed)
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if err := s.store.AttachTransaction(ctx, purchaseID, payment.TransactionID); err != nil {
		s.metrics.CountPurchase(ctx, aws.OutcomeFailed)
		return nil, fmt.Errorf("attach transaction %s: %w", payment.TransactionID, err)
	}

	s.metrics.CountPurchase(ctx, aws.OutcomeCreated)

	lines := make([]PurchaseLine, 0, len(details))
	for _, d := range details {
		lines = append(lines, PurchaseLine{
			ProductName:   d.ProductName,
			Quantity:      d.Quantity,
			UnitPrice:     d.UnitPrice,
			TotalPrice:    d.TotalPrice,
			SelectedColor: d.SelectedColor,
		})
	}

	return &CreatePurchaseResult{
		PurchaseID:    purchaseID,
		TransactionID: payment.TransactionID,
		PaymentURL:    payment.PaymentURL,
		Provider:      s.gateway.Provider(),
		TotalAmount:   totalAmount,
		Currency:      currencyCOP,
		Status:        StatusPending,
		OrderStatus:   OrderStatusPending,
		Items:         lines,
	}, nil
}

// UpdatePaymentStatus reconciles a gateway callback with the local purchase.
// The purchase is looked up by transaction id first, then by external
// reference. A miss is logged and dropped: callback events can race the
// purchase row and must never crash the caller.
func (s *Service) UpdatePaymentStatus(ctx context.Context, transactionID, status, externalReference string) error {
	purchase, err := s.store.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("lookup by transaction id: %w", err)
	}
	if purchase == nil && externalReference != "" {
		purchase, err = s.store.GetByExternalReference(ctx, externalReference)
		if err != nil {
			return fmt.Errorf("lookup by external reference: %w", err)
		}
	}
	if purchase == nil {
		log.Printf("[purchases] no purchase for transaction=%s reference=%s, ignoring event",
			transactionID, externalReference)
		return nil
	}

	if !canTransition(purchase.Status, status) {
		log.Printf("[purchases] ignoring transition %s -> %s for purchase=%s",
			purchase.Status, status, purchase.PurchaseID)
		return nil
	}

	if err := s.store.UpdatePaymentStatus(ctx, purchase.PurchaseID, status, transactionID); err != nil {
		return err
	}
	s.metrics.CountReconciliation(ctx, status)
	log.Printf("[purchases] purchase=%s status %s -> %s", purchase.PurchaseID, purchase.Status, status)
	return nil
}

// SweepOrphans cancels PENDING purchases older than maxAge that never got a
// transaction id attached. Returns how many were cancelled.
func (s *Service) SweepOrphans(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.nowFunc().Add(-maxAge)
	orphans, err := s.store.ListOrphanPending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, p := range orphans {
		if err := s.store.UpdatePaymentStatus(ctx, p.PurchaseID, StatusCancelled, ""); err != nil {
			return cancelled, fmt.Errorf("cancel orphan %s: %w", p.PurchaseID, err)
		}
		log.Printf("[purchases] cancelled orphan purchase=%s reference=%s", p.PurchaseID, p.ExternalReference)
		cancelled++
	}
	return cancelled, nil
}

// canTransition implements the payment status machine:
// PENDING -> {APPROVED, REJECTED, FAILED, CANCELLED}; APPROVED -> COMPLETED.
// Re-asserting the current status is allowed (gateways resend events).
func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusFailed || to == StatusCancelled
	case StatusApproved:
		return to == StatusCompleted
	}
	return false
}

func (s *Service) newExternalReference() string {
	suffix := strings.ReplaceAll(s.newID(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", referencePrefix, s.nowFunc().UnixMilli(), suffix)
}

func validateBuyer(req CreatePurchaseRequest) error {
	if len(req.Items) == 0 {
		return apperr.Validation(CodeEmptyCart, "items must not be empty")
	}
	if !emailPattern.MatchString(req.BuyerEmail) {
		return apperr.Validation(CodeInvalidEmail, "buyerEmail %q is not a valid email", req.BuyerEmail)
	}
	if len(strings.TrimSpace(req.BuyerName)) < minNameLength {
		return apperr.Validation(CodeInvalidName, "buyerName must have at least %d characters", minNameLength)
	}
	if len(req.BuyerIdentificationNumber) < minIdentification {
		return apperr.Validation(CodeInvalidIdentification, "buyerIdentificationNumber must have at least %d characters", minIdentification)
	}
	if len(req.BuyerContactNumber) < minContact {
		return apperr.Validation(CodeInvalidContact, "buyerContactNumber must have at least %d characters", minContact)
	}
	return nil
}
