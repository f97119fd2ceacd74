package main

import (
	cli "github.com/urfave/cli/v2"

	"github.com/imrishuroy/go-payout-settlement/internal/polling"
	"github.com/imrishuroy/go-payout-settlement/internal/records"
)

var pollCmd = &cli.Command{
	Name:      "poll",
	Aliases:   []string{"p"},
	Usage:     "Poll an order until it settles, fails, or polling gives up",
	ArgsUsage: "ORDER_ID",
	Flags:     pollingFlags,
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
		res := orch.PollOrderStatus(c.Context, orderID, opts)
		if err := printJSON(c.App.Writer, res); err != nil {
			return err
		}
		return exitFor(res)
	},
}
