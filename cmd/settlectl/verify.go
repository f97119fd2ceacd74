package main

import (
	cli "github.com/urfave/cli/v2"

	"github.com/imrishuroy/go-payout-settlement/internal/polling"
)

var verifyCmd = &cli.Command{
	Name:      "verify",
	Aliases:   []string{"v"},
	Usage:     "Run the settlement check once against the provider",
	ArgsUsage: "ORDER_ID",
	Action: func(c *cli.Context) error {
		orderID, err := orderIDArg(c)
		if err != nil {
			return err
		}

		res, fetchErr := polling.NewVerifier(statusClientFactory(c)).VerifySettlement(c.Context, orderID)
		if err := printJSON(c.App.Writer, res); err != nil {
			return err
		}
		if fetchErr != nil {
			return cli.Exit("", 3)
		}
		if !res.Verified {
			return cli.Exit("", 1)
		}
		return nil
	},
}
