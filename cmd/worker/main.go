package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jpcardenas/tienda-backoffice/internal/aws"
)

func main() {
	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	var metrics *aws.Metrics
	if ns := os.Getenv("METRICS_NAMESPACE"); ns != "" {
		metrics = aws.NewMetrics(clients.CloudWatch, ns)
	}

	p := NewProcessor(clients.DynamoDB, metrics,
		os.Getenv("PURCHASES_TABLE"), os.Getenv("DETAILS_TABLE"))

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"type":"payment.updated","transaction_id":"local-txn-1","status":"APPROVED"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
