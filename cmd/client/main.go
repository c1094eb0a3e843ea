package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btclog"
	"github.com/ellemouton/lnurl"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()

	app.Name = "lnurl-client"
	app.Usage = "Cli for lnurl-client"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "rpcserver",
			Value:   "localhost:10009",
			Usage:   "lnd instance rpc address",
			EnvVars: []string{"LNURL_RPCSERVER"},
		},
		&cli.StringFlag{
			Name:    "network",
			Value:   "mainnet",
			Usage:   "the network lnd is running on",
			EnvVars: []string{"LNURL_NETWORK"},
		},
		&cli.StringFlag{
			Name:    "macaroonpath",
			Usage:   "Path to lnd's admin macaroon",
			EnvVars: []string{"LNURL_MACAROONPATH"},
		},
		&cli.StringFlag{
			Name:    "tlscertpath",
			Usage:   "Path to lnd's tls cert",
			EnvVars: []string{"LNURL_TLSCERTPATH"},
		},
		&cli.StringFlag{
			Name:    "proxy",
			Usage:   "proxy for lnurl requests, socks5://host:port",
			EnvVars: []string{"LNURL_PROXY"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "timeout of a single lnurl request",
			EnvVars: []string{"LNURL_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "debuglevel",
			Value:   "info",
			Usage:   "logging level",
			EnvVars: []string{"LNURL_DEBUGLEVEL"},
		},
	}
	app.Before = setupLogging
	app.Commands = append(app.Commands,
		decodeCommand,
		encodeCommand,
		payRequestCommand,
		withdrawCommand,
		channelCommand,
		authCommand,
		derivePathCommand,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[lnurl-client] %v\n", err)
	os.Exit(1)
}

func setupLogging(ctx *cli.Context) error {
	level, ok := btclog.LevelFromString(ctx.String("debuglevel"))
	if !ok {
		return fmt.Errorf("invalid debuglevel: %s",
			ctx.String("debuglevel"))
	}

	logger := btclog.NewBackend(os.Stdout).Logger(lnurl.Subsystem)
	logger.SetLevel(level)
	lnurl.UseLogger(logger)

	return nil
}

func getClient(ctx *cli.Context) (*lnurl.Client, error) {
	return lnurl.NewClient(&lnurl.ClientConfig{
		Proxy:   ctx.String("proxy"),
		Timeout: ctx.Duration("timeout"),
	})
}

func getLND(ctx *cli.Context) (*lnurl.LndServices, error) {
	return lnurl.ConnectLnd(&lnurl.LndConfig{
		Host:         ctx.String("rpcserver"),
		TLSPath:      ctx.String("tlscertpath"),
		MacaroonPath: ctx.String("macaroonpath"),
	})
}

func networkParams(ctx *cli.Context) (*chaincfg.Params, error) {
	switch network := ctx.String("network"); network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil

	case "testnet":
		return &chaincfg.TestNet3Params, nil

	case "signet":
		return &chaincfg.SigNetParams, nil

	case "regtest":
		return &chaincfg.RegressionNetParams, nil

	case "simnet":
		return &chaincfg.SimNetParams, nil

	default:
		return nil, fmt.Errorf("unknown network: %s", network)
	}
}

// lnurlArg reads the lnurl from the --lnurl flag or the first argument.
func lnurlArg(ctx *cli.Context) (lnurl.LnURL, error) {
	input := ctx.String("lnurl")
	if input == "" {
		input = ctx.Args().First()
	}
	if input == "" {
		return lnurl.LnURL{}, fmt.Errorf("missing '--lnurl' flag")
	}

	return lnurl.Parse(input)
}
