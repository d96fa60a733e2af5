package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jpcardenas/tienda-backoffice/internal/aws"
)

// Secondary indexes on the purchases and details tables.
const (
	indexByTransactionID     = "by_transaction_id"
	indexByExternalReference = "by_external_reference"
	indexByPurchaseID        = "by_purchase_id"
)

// ErrPurchaseExists indicates the generated purchase id already existed.
var ErrPurchaseExists = errors.New("purchase id already exists")

// Store encapsulates operations on the purchases and order-details tables.
type Store struct {
	client         aws.DynamoDBAPI
	purchasesTable string
	detailsTable   string
	nowFunc        func() time.Time
}

// NewStore creates a purchases Store.
func NewStore(client aws.DynamoDBAPI, purchasesTable, detailsTable string) *Store {
	return &Store{
		client:         client,
		purchasesTable: purchasesTable,
		detailsTable:   detailsTable,
		nowFunc:        time.Now,
	}
}

// CreateWithDetails atomically persists the purchase header and all of its
// line items in one TransactWriteItems call. The header put is guarded with
// attribute_not_exists so an id collision fails loudly instead of
// overwriting an existing purchase.
func (s *Store) CreateWithDetails(ctx context.Context, purchase Purchase, details []OrderDetail) error {
	now := s.nowFunc()
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = now
	}
	purchase.UpdatedAt = now

	purchaseMap, err := attributevalue.MarshalMap(purchase)
	if err != nil {
		return fmt.Errorf("marshal purchase: %w", err)
	}

	transactItems := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           &s.purchasesTable,
				Item:                purchaseMap,
				ConditionExpression: awsString("attribute_not_exists(purchase_id)"),
			},
		},
	}

	for i := range details {
		if details[i].CreatedAt.IsZero() {
			details[i].CreatedAt = now
		}
		detailMap, err := attributevalue.MarshalMap(details[i])
		if err != nil {
			return fmt.Errorf("marshal order detail: %w", err)
		}
		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{
				TableName: &s.detailsTable,
				Item:      detailMap,
			},
		})
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("%w: %s", ErrPurchaseExists, purchase.PurchaseID)
		}
		return fmt.Errorf("transact write purchase: %w", err)
	}
	return nil
}

// DeleteWithDetails atomically removes a purchase header and its line items.
// This is the compensation path when the gateway call fails after the create
// transaction committed; no partial purchase may stay observable.
func (s *Store) DeleteWithDetails(ctx context.Context, purchaseID string, detailIDs []string) error {
	transactItems := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName: &s.purchasesTable,
				Key: map[string]types.AttributeValue{
					"purchase_id": &types.AttributeValueMemberS{Value: purchaseID},
				},
			},
		},
	}
	for _, id := range detailIDs {
		transactItems = append(transactItems, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: &s.detailsTable,
				Key: map[string]types.AttributeValue{
					"detail_id": &types.AttributeValueMemberS{Value: id},
				},
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		return fmt.Errorf("transact delete purchase: %w", err)
	}
	return nil
}

// AttachTransaction stores the gateway transaction id on the purchase, in
// both the canonical field and the legacy preference_id field.
func (s *Store) AttachTransaction(ctx context.Context, purchaseID, transactionID string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.purchasesTable,
		Key: map[string]types.AttributeValue{
			"purchase_id": &types.AttributeValueMemberS{Value: purchaseID},
		},
		UpdateExpression:    awsString("SET wompi_transaction_id = :tid, preference_id = :tid, updated_at = :ua"),
		ConditionExpression: awsString("attribute_exists(purchase_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tid": &types.AttributeValueMemberS{Value: transactionID},
			":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("attach transaction: %w", err)
	}
	return nil
}

// UpdatePaymentStatus sets the payment status and, when transactionID is
// non-empty, refreshes both transaction id fields.
func (s *Store) UpdatePaymentStatus(ctx context.Context, purchaseID, status, transactionID string) error {
	now := s.nowFunc()
	updateExpr := "SET #s = :s, updated_at = :ua"
	values := map[string]types.AttributeValue{
		":s":  &types.AttributeValueMemberS{Value: status},
		":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
	}
	if transactionID != "" {
		updateExpr += ", wompi_transaction_id = :tid, preference_id = :tid"
		values[":tid"] = &types.AttributeValueMemberS{Value: transactionID}
	}

	input := &dyn.UpdateItemInput{
		TableName: &s.purchasesTable,
		Key: map[string]types.AttributeValue{
			"purchase_id": &types.AttributeValueMemberS{Value: purchaseID},
		},
		UpdateExpression:          awsString(updateExpr),
		ConditionExpression:       awsString("attribute_exists(purchase_id)"),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// Get fetches a purchase header by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, purchaseID string) (*Purchase, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.purchasesTable,
		Key: map[string]types.AttributeValue{
			"purchase_id": &types.AttributeValueMemberS{Value: purchaseID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Purchase
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal purchase: %w", err)
	}
	return &p, nil
}

// GetByTransactionID looks a purchase up through the transaction-id index.
// Returns (nil, nil) when no purchase carries that id.
func (s *Store) GetByTransactionID(ctx context.Context, transactionID string) (*Purchase, error) {
	return s.queryOne(ctx, indexByTransactionID, "wompi_transaction_id", transactionID)
}

// GetByExternalReference looks a purchase up by its locally generated
// external reference. Returns (nil, nil) when absent.
func (s *Store) GetByExternalReference(ctx context.Context, reference string) (*Purchase, error) {
	return s.queryOne(ctx, indexByExternalReference, "external_reference", reference)
}

func (s *Store) queryOne(ctx context.Context, index, attr, value string) (*Purchase, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.purchasesTable,
		IndexName:              awsString(index),
		KeyConditionExpression: awsString(fmt.Sprintf("%s = :v", attr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", index, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var p Purchase
	if err := attributevalue.UnmarshalMap(out.Items[0], &p); err != nil {
		return nil, fmt.Errorf("unmarshal purchase: %w", err)
	}
	return &p, nil
}

// ListDetails returns the line items of a purchase.
func (s *Store) ListDetails(ctx context.Context, purchaseID string) ([]OrderDetail, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.detailsTable,
		IndexName:              awsString(indexByPurchaseID),
		KeyConditionExpression: awsString("purchase_id = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: purchaseID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query order details: %w", err)
	}
	details := make([]OrderDetail, 0, len(out.Items))
	for _, item := range out.Items {
		var d OrderDetail
		if err := attributevalue.UnmarshalMap(item, &d); err != nil {
			return nil, fmt.Errorf("unmarshal order detail: %w", err)
		}
		details = append(details, d)
	}
	return details, nil
}

// GetWithDetails fetches a purchase and its line items.
// Returns (nil, nil, nil) when the purchase does not exist.
func (s *Store) GetWithDetails(ctx context.Context, purchaseID string) (*Purchase, []OrderDetail, error) {
	p, err := s.Get(ctx, purchaseID)
	if err != nil || p == nil {
		return p, nil, err
	}
	details, err := s.ListDetails(ctx, purchaseID)
	if err != nil {
		return nil, nil, err
	}
	return p, details, nil
}

// ListWithDetails returns every purchase with its line items. Used by
// reporting and backup jobs, not by the request path.
func (s *Store) ListWithDetails(ctx context.Context) ([]PurchaseWithDetails, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.purchasesTable,
	})
	if err != nil {
		return nil, fmt.Errorf("scan purchases: %w", err)
	}
	result := make([]PurchaseWithDetails, 0, len(out.Items))
	for _, item := range out.Items {
		var p Purchase
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return nil, fmt.Errorf("unmarshal purchase: %w", err)
		}
		details, err := s.ListDetails(ctx, p.PurchaseID)
		if err != nil {
			return nil, err
		}
		result = append(result, PurchaseWithDetails{Purchase: p, Details: details})
	}
	return result, nil
}

// ListOrphanPending returns PENDING purchases created before cutoff that
// never received a transaction id. These are the leftovers of a crash
// between the create transaction and the compensation delete.
func (s *Store) ListOrphanPending(ctx context.Context, cutoff time.Time) ([]Purchase, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName:                &s.purchasesTable,
		FilterExpression:         awsString("#s = :pending AND attribute_not_exists(wompi_transaction_id) AND created_at < :cutoff"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending": &types.AttributeValueMemberS{Value: StatusPending},
			":cutoff":  &types.AttributeValueMemberS{Value: cutoff.UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scan orphan purchases: %w", err)
	}
	purchases := make([]Purchase, 0, len(out.Items))
	for _, item := range out.Items {
		var p Purchase
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return nil, fmt.Errorf("unmarshal purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, nil
}

func awsString(s string) *string { return &s }
