package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/jpcardenas/tienda-backoffice/internal/aws"
	"github.com/jpcardenas/tienda-backoffice/internal/handlers"
	"github.com/jpcardenas/tienda-backoffice/internal/payments"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.Register(r, cfg)

	return r
}

func main() {
	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	gateway := payments.NewWompiClient(os.Getenv("WOMPI_BASE_URL"), os.Getenv("WOMPI_PRIVATE_KEY"))

	cfg := handlers.HandlerConfig{
		DynamoDBClient:   clients.DynamoDB,
		SQSClient:        clients.SQS,
		CloudWatchClient: clients.CloudWatch,
		Gateway:          gateway,
		ProductsTable:    os.Getenv("PRODUCTS_TABLE"),
		CategoriesTable:  os.Getenv("CATEGORIES_TABLE"),
		PurchasesTable:   os.Getenv("PURCHASES_TABLE"),
		DetailsTable:     os.Getenv("DETAILS_TABLE"),
		ClientsTable:     os.Getenv("CLIENTS_TABLE"),
		PaymentsQueueURL: os.Getenv("PAYMENTS_QUEUE_URL"),
		MetricsNamespace: os.Getenv("METRICS_NAMESPACE"),
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
