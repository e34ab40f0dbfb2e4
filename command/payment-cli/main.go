// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"
)

type metadata struct {
	url     string
	client  *http.Client
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "payment-cli"
	app.Usage = "command line client for the paymentd REST API"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "http://127.0.0.1:3000",
			Usage:  " paymentd base `URL`",
			EnvVar: "PAYMENTD_URL",
		},
		cli.IntFlag{
			Name:  "timeout, t",
			Value: 30,
			Usage: " request timeout `SECONDS`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "pay",
			Usage:     "request a payment",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*unique payment `ID`",
				},
				cli.StringFlag{
					Name:  "app-id, a",
					Usage: "*application `ID`",
				},
				cli.StringFlag{
					Name:  "recipient, r",
					Usage: "*recipient wallet `ADDRESS`",
				},
				cli.Int64Flag{
					Name:  "amount, n",
					Usage: "*amount to send `COUNT`",
				},
				cli.StringFlag{
					Name:  "callback, b",
					Usage: "*result callback `URL`",
				},
			},
			Action: runPay,
		},
		{
			Name:      "payment",
			Usage:     "display a completed payment",
			ArgsUsage: "ID",
			Action:    runPayment,
		},
		{
			Name:      "create-wallet",
			Usage:     "request creation of a wallet",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Usage: "*unique request `ID`",
				},
				cli.StringFlag{
					Name:  "app-id, a",
					Usage: "*application `ID`",
				},
				cli.StringFlag{
					Name:  "address, w",
					Usage: "*new wallet `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "callback, b",
					Usage: "*result callback `URL`",
				},
			},
			Action: runCreateWallet,
		},
		{
			Name:      "wallet",
			Usage:     "display wallet balances",
			ArgsUsage: "ADDRESS",
			Action:    runWallet,
		},
		{
			Name:      "wallet-payments",
			Usage:     "list payments touching a wallet",
			ArgsUsage: "ADDRESS",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, n",
					Value: 10,
					Usage: " maximum payments to list `COUNT`",
				},
			},
			Action: runWalletPayments,
		},
		{
			Name:      "watch",
			Usage:     "register a service watching wallet addresses",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "service, s",
					Usage: "*service `ID`",
				},
				cli.StringFlag{
					Name:  "callback, b",
					Usage: "*notification callback `URL`",
				},
				cli.StringSliceFlag{
					Name:  "address, w",
					Usage: " wallet `ADDRESS` to watch, may be repeated",
				},
				cli.BoolFlag{
					Name:  "add, m",
					Usage: " merge with the existing addresses instead of replacing them",
				},
			},
			Action: runWatch,
		},
		{
			Name:      "unwatch",
			Usage:     "remove a service",
			ArgsUsage: "SERVICE",
			Action:    runUnwatch,
		},
		{
			Name:      "watch-payment",
			Usage:     "watch an address for one expected payment",
			ArgsUsage: "SERVICE ADDRESS PAYMENT",
			Action:    runWatchPayment,
		},
		{
			Name:      "unwatch-payment",
			Usage:     "remove a payment watch",
			ArgsUsage: "SERVICE ADDRESS PAYMENT",
			Action:    runUnwatchPayment,
		},
		{
			Name:   "watchers",
			Usage:  "list watched addresses and their services",
			Action: runWatchers,
		},
		{
			Name:   "status",
			Usage:  "display paymentd status",
			Action: runStatus,
		},
		{
			Name:   "config",
			Usage:  "display paymentd ledger configuration",
			Action: runConfig,
		},
	}

	app.Before = func(c *cli.Context) error {
		base := strings.TrimRight(c.GlobalString("connect"), "/")
		if "" == base {
			return fmt.Errorf("connect URL is required")
		}

		timeout := c.GlobalInt("timeout")
		if timeout <= 0 {
			return fmt.Errorf("timeout: %d must be positive", timeout)
		}

		c.App.Metadata["config"] = &metadata{
			url: base,
			client: &http.Client{
				Timeout: time.Duration(timeout) * time.Second,
			},
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	return app
}
