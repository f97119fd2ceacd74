package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
)

const appName = "settlectl"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", appName, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        appName,
		Usage:       "poll, verify and monitor payout orders against the settlement provider",
		Description: fmt.Sprintf("operator cli for the payout settlement service\nFor help on any individual command run <%v COMMAND -h>", appName),
		Flags:       globalFlags,
		Commands: cli.Commands{
			pollCmd,
			verifyCmd,
			monitorCmd,
		},
	}
}
