package main

import (
	cli "github.com/urfave/cli/v2"

	"github.com/imrishuroy/go-payout-settlement/internal/polling"
	"github.com/imrishuroy/go-payout-settlement/internal/records"
)

var monitorCmd = &cli.Command{
	Name:      "monitor",
	Aliases:   []string{"m"},
	Usage:     "Poll an order under an absolute monitoring deadline",
	ArgsUsage: "ORDER_ID",
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:    "deadline",
			EnvVars: []string{"MONITOR_DEADLINE"},
			Value:   polling.DefaultMonitorDeadline,
		},
	}, pollingFlags...),
	Action: func(c *cli.Context) error {
		orderID, err := orderIDArg(c)
		if err != nil {
			return err
		}
		opts, err := pollingOptions(c)
		if err != nil {
			return err
		}
		logger, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		sink := records.NewSink(records.PassthroughResolver{}, logger, 0, records.LogWriter{Logger: logger})
		defer sink.Close()

		orch := polling.NewOrchestrator(statusClientFactory(c), sink, sink, logger)
		res := polling.NewGuard(orch, c.Duration("deadline"), opts).MonitorPayment(c.Context, orderID)
		if err := printJSON(c.App.Writer, res); err != nil {
			return err
		}
		return exitFor(res)
	},
}
