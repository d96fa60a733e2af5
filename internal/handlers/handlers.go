package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jpcardenas/tienda-backoffice/internal/apperr"
	"github.com/jpcardenas/tienda-backoffice/internal/aws"
	"github.com/jpcardenas/tienda-backoffice/internal/cart"
	"github.com/jpcardenas/tienda-backoffice/internal/catalog"
	"github.com/jpcardenas/tienda-backoffice/internal/clients"
	"github.com/jpcardenas/tienda-backoffice/internal/payments"
	"github.com/jpcardenas/tienda-backoffice/internal/purchases"
	"github.com/jpcardenas/tienda-backoffice/internal/validation"
)

// HandlerConfig groups dependencies for the API handlers.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	Gateway          payments.Gateway

	ProductsTable    string
	CategoriesTable  string
	PurchasesTable   string
	DetailsTable     string
	ClientsTable     string
	PaymentsQueueURL string
	MetricsNamespace string
}

// Register wires stores and services and registers every route.
func Register(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	catalogStore := catalog.NewStore(cfg.DynamoDBClient, cfg.ProductsTable, cfg.CategoriesTable)
	purchaseStore := purchases.NewStore(cfg.DynamoDBClient, cfg.PurchasesTable, cfg.DetailsTable)
	clientStore := clients.NewStore(cfg.DynamoDBClient, cfg.ClientsTable)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.PaymentsQueueURL)

	var metrics *aws.Metrics
	if cfg.CloudWatchClient != nil {
		metrics = aws.NewMetrics(cfg.CloudWatchClient, cfg.MetricsNamespace)
	}

	svc := purchases.NewService(purchaseStore, cart.NewValidator(catalogStore), cfg.Gateway, metrics)

	registerPaymentRoutes(r, v, svc, purchaseStore, publisher)
	registerCatalogRoutes(r, catalogStore)
	registerClientRoutes(r, v, clientStore)
}

// writeError maps service errors onto the response envelope. Infrastructure
// failures are logged with context but surface only a generic message.
func writeError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"code":    ve.Code,
			"reasons": []string{ve.Message},
		})
		return
	}

	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[api] internal error: %v", err)
		c.JSON(status, gin.H{
			"error":   "internal_error",
			"message": "something went wrong, please try again later",
		})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
