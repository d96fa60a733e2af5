package purchases

import "time"

// Payment statuses for a Purchase. PENDING moves to one of the gateway
// outcomes; APPROVED may later move to COMPLETED.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Fulfillment statuses, tracked independently of payment status.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPreparing = "PREPARING"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
)

// Purchase is the persisted order header for one checkout attempt.
type Purchase struct {
	PurchaseID                string    `dynamodbav:"purchase_id" json:"id"` // PK
	BuyerEmail                string    `dynamodbav:"buyer_email" json:"buyerEmail"`
	BuyerName                 string    `dynamodbav:"buyer_name" json:"buyerName"`
	BuyerIdentificationNumber string    `dynamodbav:"buyer_identification_number" json:"buyerIdentificationNumber"`
	BuyerContactNumber        string    `dynamodbav:"buyer_contact_number" json:"buyerContactNumber"`
	ShippingAddress           string    `dynamodbav:"shipping_address,omitempty" json:"shippingAddress,omitempty"`
	Status                    string    `dynamodbav:"status" json:"status"`             // payment status
	OrderStatus               string    `dynamodbav:"order_status" json:"orderStatus"` // fulfillment status
	Amount                    int64     `dynamodbav:"amount" json:"totalAmount"`       // COP, integer units
	Currency                  string    `dynamodbav:"currency" json:"currency"`
	PaymentProvider           string    `dynamodbav:"payment_provider" json:"paymentProvider"`
	ExternalReference         string    `dynamodbav:"external_reference" json:"externalReference"`
	// transaction id lives in both fields: preference_id is the older schema
	// generation's name, kept in sync for rows read by legacy tooling
	WompiTransactionID string    `dynamodbav:"wompi_transaction_id,omitempty" json:"wompiTransactionId,omitempty"`
	PreferenceID       string    `dynamodbav:"preference_id,omitempty" json:"-"`
	CreatedAt          time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}

// OrderDetail is one priced line item of a Purchase. The product name and
// prices are snapshots taken at purchase time; later catalog edits must not
// change what the buyer agreed to.
type OrderDetail struct {
	DetailID      string    `dynamodbav:"detail_id" json:"id"` // PK
	PurchaseID    string    `dynamodbav:"purchase_id" json:"purchaseId"`
	ProductName   string    `dynamodbav:"product_name" json:"productName"`
	Quantity      int       `dynamodbav:"quantity" json:"quantity"`
	UnitPrice     int64     `dynamodbav:"unit_price" json:"unitPrice"`
	TotalPrice    int64     `dynamodbav:"total_price" json:"totalPrice"`
	SelectedColor string    `dynamodbav:"selected_color,omitempty" json:"selectedColor,omitempty"`
	CreatedAt     time.Time `dynamodbav:"created_at" json:"createdAt"`
}

// PurchaseWithDetails pairs a header with its line items for reporting.
type PurchaseWithDetails struct {
	Purchase Purchase      `json:"purchase"`
	Details  []OrderDetail `json:"items"`
}
