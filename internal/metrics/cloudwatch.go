package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/imrishuroy/go-payout-settlement/internal/aws"
	"github.com/imrishuroy/go-payout-settlement/internal/records"
)

// Metric names published under the configured namespace.
const (
	MetricPollResponseTime  = "PollResponseTime"
	MetricPollErrors        = "PollErrors"
	MetricSettlementSeconds = "SettlementSeconds"
)

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "PayoutSettlement"

// CloudWatchWriter publishes poll and settlement metrics. It is a records.Writer
// so it can sit next to the table store in the record sink.
type CloudWatchWriter struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewCloudWatchWriter returns a writer publishing to namespace.
func NewCloudWatchWriter(client aws.CloudWatchAPI, namespace string) *CloudWatchWriter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CloudWatchWriter{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// WriteAttempt implements records.Writer.
func (w *CloudWatchWriter) WriteAttempt(ctx context.Context, a records.Attempt) error {
	ts := w.timestamp(a.Timestamp)
	data := []cwtypes.MetricDatum{{
		MetricName: awsString(MetricPollResponseTime),
		Unit:       cwtypes.StandardUnitMilliseconds,
		Value:      awsFloat(float64(a.ResponseTime.Milliseconds())),
		Timestamp:  &ts,
		Dimensions: statusDimension(a.Status),
	}}
	if a.ErrorMessage != "" {
		data = append(data, cwtypes.MetricDatum{
			MetricName: awsString(MetricPollErrors),
			Unit:       cwtypes.StandardUnitCount,
			Value:      awsFloat(1),
			Timestamp:  &ts,
		})
	}
	return w.put(ctx, data)
}

// WriteSettlement implements records.Writer.
func (w *CloudWatchWriter) WriteSettlement(ctx context.Context, s records.Settlement) error {
	ts := w.timestamp(s.Timestamp)
	return w.put(ctx, []cwtypes.MetricDatum{{
		MetricName: awsString(MetricSettlementSeconds),
		Unit:       cwtypes.StandardUnitSeconds,
		Value:      awsFloat(s.SettlementSeconds),
		Timestamp:  &ts,
		Dimensions: statusDimension(s.Status),
	}})
}

func (w *CloudWatchWriter) put(ctx context.Context, data []cwtypes.MetricDatum) error {
	_, err := w.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &w.namespace,
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func (w *CloudWatchWriter) timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return w.nowFunc().UTC()
	}
	return t.UTC()
}

func statusDimension(status string) []cwtypes.Dimension {
	if status == "" {
		return nil
	}
	return []cwtypes.Dimension{{Name: awsString("Status"), Value: awsString(status)}}
}

func awsString(s string) *string { return &s }

func awsFloat(f float64) *float64 { return &f }
