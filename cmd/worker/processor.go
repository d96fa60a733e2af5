package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jpcardenas/tienda-backoffice/internal/aws"
	"github.com/jpcardenas/tienda-backoffice/internal/purchases"
)

// orphanMaxAge is how long a PENDING purchase may sit without a transaction
// id before a sweep cancels it.
const orphanMaxAge = time.Hour

// Processor reconciles payment events from SQS with stored purchases.
type Processor struct {
	svc *purchases.Service
}

// NewProcessor creates a worker processor with AWS clients injected.
// metrics may be nil when no namespace is configured.
func NewProcessor(dynamo aws.DynamoDBAPI, metrics *aws.Metrics, purchasesTable, detailsTable string) *Processor {
	store := purchases.NewStore(dynamo, purchasesTable, detailsTable)
	return &Processor{svc: purchases.NewReconciler(store, metrics)}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			log.Printf("worker error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg PaymentEventMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	switch msg.Type {
	case TypePaymentUpdated:
		log.Printf("[worker] payment event transaction=%s status=%s reference=%s",
			msg.TransactionID, msg.Status, msg.ExternalReference)
		return p.svc.UpdatePaymentStatus(ctx, msg.TransactionID, msg.Status, msg.ExternalReference)

	case TypePurchaseSweep:
		cancelled, err := p.svc.SweepOrphans(ctx, orphanMaxAge)
		if err != nil {
			return fmt.Errorf("sweep orphan purchases: %w", err)
		}
		log.Printf("[worker] sweep cancelled %d orphan purchases", cancelled)
		return nil

	default:
		// Unknown types are dropped, not retried: redelivery cannot fix them.
		log.Printf("[worker] ignoring message with unknown type %q", msg.Type)
		return nil
	}
}
