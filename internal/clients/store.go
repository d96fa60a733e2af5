// Package clients is the buyer directory: back-office records of people who
// have checked out or registered.
package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/jpcardenas/tienda-backoffice/internal/apperr"
	"github.com/jpcardenas/tienda-backoffice/internal/aws"
)

// Client is one registered buyer. Email is the identity.
type Client struct {
	Email                string    `dynamodbav:"email" json:"email"` // PK
	Name                 string    `dynamodbav:"name" json:"name"`
	IdentificationNumber string    `dynamodbav:"identification_number,omitempty" json:"identificationNumber,omitempty"`
	ContactNumber        string    `dynamodbav:"contact_number,omitempty" json:"contactNumber,omitempty"`
	Address              string    `dynamodbav:"address,omitempty" json:"address,omitempty"`
	CreatedAt            time.Time `dynamodbav:"created_at" json:"createdAt"`
}

// Store encapsulates operations on the clients table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a clients Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create registers a client. A duplicate email is a ConflictError.
func (s *Store) Create(ctx context.Context, c Client) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.nowFunc()
	}
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal client: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(email)"),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return apperr.Conflict("client email %s already registered", c.Email)
		}
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return apperr.Conflict("client email %s already registered", c.Email)
		}
		return fmt.Errorf("put client: %w", err)
	}
	return nil
}

// Get fetches a client by email. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, email string) (*Client, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Client
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal client: %w", err)
	}
	return &c, nil
}

// List returns every registered client.
func (s *Store) List(ctx context.Context) ([]Client, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.tableName,
	})
	if err != nil {
		return nil, fmt.Errorf("scan clients: %w", err)
	}
	clients := make([]Client, 0, len(out.Items))
	for _, item := range out.Items {
		var c Client
		if err := attributevalue.UnmarshalMap(item, &c); err != nil {
			return nil, fmt.Errorf("unmarshal client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

func awsString(s string) *string { return &s }
