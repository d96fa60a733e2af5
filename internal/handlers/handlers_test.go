package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"

	"github.com/jpcardenas/tienda-backoffice/internal/catalog"
	"github.com/jpcardenas/tienda-backoffice/internal/colors"
	"github.com/jpcardenas/tienda-backoffice/internal/payments"
)

// --- in-memory fakes ---

type mockDynamo struct {
	mu      sync.Mutex
	pkAttrs map[string]string
	tables  map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		pkAttrs: map[string]string{
			"products":   "product_id",
			"categories": "category_id",
			"purchases":  "purchase_id",
			"details":    "detail_id",
			"clients":    "email",
		},
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func (m *mockDynamo) seed(t *testing.T, table string, entity interface{}) {
	t.Helper()
	item, err := attributevalue.MarshalMap(entity)
	if err != nil {
		t.Fatalf("seed marshal: %v", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTable(table)
	pk := item[m.pkAttrs[table]].(*types.AttributeValueMemberS).Value
	m.tables[table][pk] = item
}

func (m *mockDynamo) count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

func strAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attr := m.pkAttrs[*params.TableName]
	pk := params.Key[attr].(*types.AttributeValueMemberS).Value
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
	attr := m.pkAttrs[*params.TableName]
	pk := strAttr(params.Item, attr)
	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := m.tables[*params.TableName][pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[*params.TableName][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attr := m.pkAttrs[*params.TableName]
	pk := params.Key[attr].(*types.AttributeValueMemberS).Value
	item, ok := m.tables[*params.TableName][pk]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
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
	return &dyn.UpdateItemOutput{}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range params.TransactItems {
		switch {
		case it.Put != nil:
			m.ensureTable(*it.Put.TableName)
			attr := m.pkAttrs[*it.Put.TableName]
			m.tables[*it.Put.TableName][strAttr(it.Put.Item, attr)] = it.Put.Item
		case it.Delete != nil:
			m.ensureTable(*it.Delete.TableName)
			attr := m.pkAttrs[*it.Delete.TableName]
			delete(m.tables[*it.Delete.TableName], strAttr(it.Delete.Key, attr))
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

type fakeSQS struct {
	mu     sync.Mutex
	bodies []string
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, *params.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

type fakeGateway struct {
	err   error
	calls int
}

func (g *fakeGateway) CreatePayment(ctx context.Context, in payments.CreatePaymentInput) (*payments.Payment, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &payments.Payment{TransactionID: "txn-1", PaymentURL: "https://checkout.wompi.co/l/txn-1"}, nil
}

func (g *fakeGateway) Provider() string { return "wompi" }

func newTestRouter(mock *mockDynamo, gw *fakeGateway, queue *fakeSQS) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, HandlerConfig{
		DynamoDBClient:   mock,
		SQSClient:        queue,
		Gateway:          gw,
		ProductsTable:    "products",
		CategoriesTable:  "categories",
		PurchasesTable:   "purchases",
		DetailsTable:     "details",
		ClientsTable:     "clients",
		PaymentsQueueURL: "https://sqs.local/payments",
	})
	return r
}

func seedProductOne(t *testing.T, mock *mockDynamo) {
	mock.seed(t, "products", catalog.Product{
		ProductID: "1",
		Name:      "Camiseta",
		Price:     15000,
		Status:    catalog.StatusAvailable,
		Colors:    colors.List{"Azul"},
	})
}

// --- tests ---

func TestPostPaymentCreate_Success(t *testing.T) {
	mock := newMockDynamo()
	seedProductOne(t, mock)
	r := newTestRouter(mock, &fakeGateway{}, &fakeSQS{})

	body := `{"buyerEmail":"a@b.com","buyerName":"Jo","buyerIdentificationNumber":"123456","buyerContactNumber":"3001234567","items":[{"productId":1,"quantity":2}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Purchase struct {
			ID          string `json:"id"`
			TotalAmount int64  `json:"totalAmount"`
			Currency    string `json:"currency"`
			Status      string `json:"status"`
			Items       []struct {
				ProductName string `json:"productName"`
				Quantity    int    `json:"quantity"`
				UnitPrice   int64  `json:"unitPrice"`
				TotalPrice  int64  `json:"totalPrice"`
			} `json:"items"`
		} `json:"purchase"`
		Payment struct {
			WompiTransactionID string `json:"wompiTransactionId"`
			PaymentURL         string `json:"paymentUrl"`
			Provider           string `json:"provider"`
		} `json:"payment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Purchase.TotalAmount != 30000 || resp.Purchase.Currency != "COP" {
		t.Fatalf("unexpected purchase: %+v", resp.Purchase)
	}
	if len(resp.Purchase.Items) != 1 || resp.Purchase.Items[0].TotalPrice != 30000 {
		t.Fatalf("unexpected items: %+v", resp.Purchase.Items)
	}
	if resp.Payment.WompiTransactionID != "txn-1" || resp.Payment.Provider != "wompi" {
		t.Fatalf("unexpected payment: %+v", resp.Payment)
	}
	if mock.count("purchases") != 1 || mock.count("details") != 1 {
		t.Fatalf("rows: purchases=%d details=%d", mock.count("purchases"), mock.count("details"))
	}
}

func TestPostPaymentCreate_MalformedBody(t *testing.T) {
	mock := newMockDynamo()
	r := newTestRouter(mock, &fakeGateway{}, &fakeSQS{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/create", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if mock.count("purchases") != 0 {
		t.Fatal("nothing may be persisted on validation failure")
	}
}

func TestPostPaymentCreate_GatewayDownIs500(t *testing.T) {
	mock := newMockDynamo()
	seedProductOne(t, mock)
	gw := &fakeGateway{err: errors.New("wompi down")}
	r := newTestRouter(mock, gw, &fakeSQS{})

	body := `{"buyerEmail":"a@b.com","buyerName":"Jo","buyerIdentificationNumber":"123456","buyerContactNumber":"3001234567","items":[{"productId":"1","quantity":1}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	// generic message only, no internal detail
	if strings.Contains(w.Body.String(), "wompi down") {
		t.Fatalf("internal error leaked: %s", w.Body.String())
	}
	if mock.count("purchases") != 0 || mock.count("details") != 0 {
		t.Fatal("gateway failure must leave no rows behind")
	}
}

func TestPostPaymentWebhook_Enqueues(t *testing.T) {
	mock := newMockDynamo()
	queue := &fakeSQS{}
	r := newTestRouter(mock, &fakeGateway{}, queue)

	body := `{"event":"transaction.updated","data":{"transaction":{"id":"txn-1","status":"APPROVED","reference":"TIENDA-1-abc"}}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(queue.bodies) != 1 {
		t.Fatalf("expected 1 enqueued event, got %d", len(queue.bodies))
	}
	var msg map[string]string
	if err := json.Unmarshal([]byte(queue.bodies[0]), &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg["status"] != "APPROVED" || msg["transaction_id"] != "txn-1" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestGetPurchase_NotFound(t *testing.T) {
	mock := newMockDynamo()
	r := newTestRouter(mock, &fakeGateway{}, &fakeSQS{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/purchases/ghost", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPostClients_Duplicate409(t *testing.T) {
	mock := newMockDynamo()
	r := newTestRouter(mock, &fakeGateway{}, &fakeSQS{})

	body := `{"email":"a@b.com","name":"Jo"}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("attempt %d: status = %d, want %d", i+1, w.Code, want)
		}
	}
}
