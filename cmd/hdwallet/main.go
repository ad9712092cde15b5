// hdwallet is a command line tool around the key library: seed generation,
// path derivation, extended key decoding and message signing.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/btcsuite/btclog/v2"
	"github.com/urfave/cli"
	"github.com/walletkit/hdwalletkit/wallet"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[hdwallet] %v\n", err)
	os.Exit(1)
}

func printJSON(resp interface{}) {
	b, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(b))
}

func main() {
	app := cli.NewApp()
	app.Name = "hdwallet"
	app.Version = "0.1.0"
	app.Usage = "control plane for hierarchical deterministic wallet keys"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging to stderr",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		if !ctx.GlobalBool("debug") {
			return nil
		}

		logger := btclog.NewSLogger(
			btclog.NewDefaultHandler(os.Stderr),
		)
		logger.SetLevel(btclog.LevelTrace)
		wallet.UseLogger(logger)

		return nil
	}
	app.Commands = []cli.Command{
		seedCommand,
		deriveCommand,
		decodeCommand,
		signCommand,
		verifyCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
