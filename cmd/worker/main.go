package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payout-settlement/internal/aws"
	"github.com/imrishuroy/go-payout-settlement/internal/config"
	"github.com/imrishuroy/go-payout-settlement/internal/idempotency"
	"github.com/imrishuroy/go-payout-settlement/internal/logging"
	"github.com/imrishuroy/go-payout-settlement/internal/metrics"
	"github.com/imrishuroy/go-payout-settlement/internal/orders"
	"github.com/imrishuroy/go-payout-settlement/internal/polling"
	"github.com/imrishuroy/go-payout-settlement/internal/records"
	"github.com/imrishuroy/go-payout-settlement/internal/statusclient"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireAWS("ORDERS_TABLE", "IDEMPOTENCY_TABLE", "POLL_ATTEMPTS_TABLE", "SETTLEMENTS_TABLE"); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	orderStore := orders.NewStore(clients.DynamoDB, cfg.OrdersTable)

	var resolver records.Resolver = orderStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		resolver = orders.NewCachedResolver(rdb, orderStore, logger)
	}

	sink := records.NewSink(resolver, logger, cfg.RecorderBuffer,
		records.NewDynamoStore(clients.DynamoDB, cfg.PollAttemptsTable, cfg.SettlementsTable),
		metrics.NewCloudWatchWriter(clients.CloudWatch, cfg.MetricsNamespace),
	)
	defer sink.Close()

	client := statusclient.New(cfg.StatusAPIBaseURL, cfg.StatusAPIKey, cfg.StatusAPITimeout)
	orch := polling.NewOrchestrator(client, sink, sink, logger)
	guard := polling.NewGuard(orch, cfg.MonitorDeadline, cfg.Polling)

	// the processor leases each claim for its own deadline; this is the fallback
	claims := idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, 48*time.Hour, cfg.MonitorDeadline+leaseSlack)

	p := NewProcessor(claims, orderStore, guard, cfg.Polling, sink, logger)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"order_id":"local-order-1"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: testBody},
			},
		}
		resp, err := p.Handle(context.Background(), event)
		if err != nil {
			logger.Fatal("local handler error", zap.Error(err))
		}
		logger.Info("local run finished", zap.Int("failures", len(resp.BatchItemFailures)))
		return
	}

	lambda.Start(p.Handle)
}
