package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payout-settlement/internal/aws"
	"github.com/imrishuroy/go-payout-settlement/internal/config"
	"github.com/imrishuroy/go-payout-settlement/internal/handlers"
	"github.com/imrishuroy/go-payout-settlement/internal/logging"
	"github.com/imrishuroy/go-payout-settlement/internal/orders"
	"github.com/imrishuroy/go-payout-settlement/internal/polling"
	"github.com/imrishuroy/go-payout-settlement/internal/statusclient"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterOrdersRoutes(r, cfg)

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireAWS("ORDERS_TABLE", "MONITOR_QUEUE_URL"); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		logger.Fatal("failed to init aws clients", zap.Error(err))
	}

	client := statusclient.New(cfg.StatusAPIBaseURL, cfg.StatusAPIKey, cfg.StatusAPITimeout)

	r := setupRouter(handlers.HandlerConfig{
		Orders:          orders.NewStore(clients.DynamoDB, cfg.OrdersTable),
		Publisher:       aws.NewPublisher(clients.SQS, cfg.MonitorQueueURL),
		Verifier:        polling.NewVerifier(client),
		Logger:          logger,
		DefaultOptions:  cfg.Polling,
		DefaultDeadline: cfg.MonitorDeadline,
	})

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		logger.Info("running local server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			logger.Fatal("failed to run local server", zap.Error(err))
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
