package catalog

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jpcardenas/tienda-backoffice/internal/aws"
)

// Store is read access to the products and categories tables.
type Store struct {
	client          aws.DynamoDBAPI
	productsTable   string
	categoriesTable string
}

// NewStore creates a catalog Store.
func NewStore(client aws.DynamoDBAPI, productsTable, categoriesTable string) *Store {
	return &Store{
		client:          client,
		productsTable:   productsTable,
		categoriesTable: categoriesTable,
	}
}

// GetProduct fetches a product by id. Returns (nil, nil) if not found.
func (s *Store) GetProduct(ctx context.Context, productID string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.productsTable,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// ListProducts returns every product. Back-office listing only; the purchase
// flow never calls this.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.productsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	products := make([]Product, 0, len(out.Items))
	for _, item := range out.Items {
		var p Product
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return nil, fmt.Errorf("unmarshal product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

// GetCategory fetches a category by id. Returns (nil, nil) if not found.
func (s *Store) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.categoriesTable,
		Key: map[string]types.AttributeValue{
			"category_id": &types.AttributeValueMemberS{Value: categoryID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Category
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal category: %w", err)
	}
	return &c, nil
}

// ListCategories returns every category.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.categoriesTable,
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	categories := make([]Category, 0, len(out.Items))
	for _, item := range out.Items {
		var c Category
		if err := attributevalue.UnmarshalMap(item, &c); err != nil {
			return nil, fmt.Errorf("unmarshal category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, nil
}
