package purchases

import (
	"context"
	"errors"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a minimal in-memory DynamoDB fake: table -> pk -> item.
// It implements just enough of the expressions the Store issues.
type mockDynamo struct {
	mu      sync.Mutex
	pkAttrs map[string]string // table name -> pk attribute name
	tables  map[string]map[string]map[string]types.AttributeValue

	failTransact  error // next TransactWriteItems returns this
	transactCalls int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		pkAttrs: map[string]string{
			"purchases": "purchase_id",
			"details":   "detail_id",
		},
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func (m *mockDynamo) count(tbl string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[tbl])
}

func strAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *mockDynamo) pkOf(table string, item map[string]types.AttributeValue) (string, error) {
	attr, ok := m.pkAttrs[table]
	if !ok {
		return "", errors.New("unknown table " + table)
	}
	pk := strAttr(item, attr)
	if pk == "" {
		return "", errors.New("missing pk attribute " + attr)
	}
	return pk, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactCalls++
	if m.failTransact != nil {
		err := m.failTransact
		m.failTransact = nil
		return nil, err
	}
	// check conditions first: the real call is all-or-nothing
	for _, it := range params.TransactItems {
		if p := it.Put; p != nil {
			m.ensureTable(*p.TableName)
			pk, err := m.pkOf(*p.TableName, p.Item)
			if err != nil {
				return nil, err
			}
			if p.ConditionExpression != nil && strings.HasPrefix(*p.ConditionExpression, "attribute_not_exists") {
				if _, exists := m.tables[*p.TableName][pk]; exists {
					return nil, &types.TransactionCanceledException{}
				}
			}
		}
	}
	for _, it := range params.TransactItems {
		switch {
		case it.Put != nil:
			pk, _ := m.pkOf(*it.Put.TableName, it.Put.Item)
			m.tables[*it.Put.TableName][pk] = it.Put.Item
		case it.Delete != nil:
			m.ensureTable(*it.Delete.TableName)
			pk, err := m.pkOf(*it.Delete.TableName, it.Delete.Key)
			if err != nil {
				return nil, err
			}
			delete(m.tables[*it.Delete.TableName], pk)
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := m.pkOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[*params.TableName][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(*params.TableName)
	pk, err := m.pkOf(*params.TableName, params.Item)
	if err != nil {
		return nil, err
	}
	m.tables[*params.TableName][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := m.pkOf(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[*params.TableName][pk]
	if !ok {
		if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_exists") {
			return nil, &types.ConditionalCheckFailedException{}
		}
		item = map[string]types.AttributeValue{}
		m.tables[*params.TableName][pk] = item
	}
	// naive SET support for the expressions the store uses
	if v, ok := params.ExpressionAttributeValues[":s"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":tid"]; ok {
		item["wompi_transaction_id"] = v
		item["preference_id"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// key condition is always "<attr> = :v"
	attr := strings.TrimSpace(strings.Split(*params.KeyConditionExpression, "=")[0])
	want := params.ExpressionAttributeValues[":v"].(*types.AttributeValueMemberS).Value
	out := &dyn.QueryOutput{}
	for _, item := range m.tables[*params.TableName] {
		if strAttr(item, attr) == want {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &dyn.ScanOutput{}
	for _, item := range m.tables[*params.TableName] {
		if params.FilterExpression != nil {
			// the only filter the store issues is the orphan-PENDING one
			pending := params.ExpressionAttributeValues[":pending"].(*types.AttributeValueMemberS).Value
			cutoff := params.ExpressionAttributeValues[":cutoff"].(*types.AttributeValueMemberS).Value
			if strAttr(item, "status") != pending {
				continue
			}
			if strAttr(item, "wompi_transaction_id") != "" {
				continue
			}
			if strAttr(item, "created_at") >= cutoff {
				continue
			}
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
