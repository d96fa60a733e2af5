package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric outcome dimension values emitted by the purchase flow.
const (
	OutcomeCreated = "created"
	OutcomeFailed  = "failed"
)

// Metrics emits operational counters to CloudWatch. A nil *Metrics is a
// valid no-op recorder, so callers never have to branch on it.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewMetrics returns a Metrics recorder publishing under the given namespace.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{client: client, namespace: namespace}
}

// CountPurchase records one purchase-creation attempt with its outcome.
// Best-effort: failures are logged, never returned.
func (m *Metrics) CountPurchase(ctx context.Context, outcome string) {
	if m == nil || m.client == nil {
		return
	}
	value := 1.0
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("PurchaseCreate"),
				Value:      &value,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Outcome"), Value: &outcome},
				},
			},
		},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		log.Printf("[metrics] put metric data: %v", err)
	}
}

// CountReconciliation records one applied payment status transition.
func (m *Metrics) CountReconciliation(ctx context.Context, status string) {
	if m == nil || m.client == nil {
		return
	}
	value := 1.0
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("PaymentReconciliation"),
				Value:      &value,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Status"), Value: &status},
				},
			},
		},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		log.Printf("[metrics] put metric data: %v", err)
	}
}
