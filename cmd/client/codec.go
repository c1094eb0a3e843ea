package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ellemouton/lnurl"
	"github.com/urfave/cli/v2"
)

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "Decode an LNURL or lightning address",
	ArgsUsage: "lnurl",
	Action: func(ctx *cli.Context) error {
		l, err := lnurl.Parse(ctx.Args().First())
		if err != nil {
			return err
		}

		fmt.Println(l.URL)

		return nil
	},
}

var encodeCommand = &cli.Command{
	Name:      "encode",
	Usage:     "Encode a URL as an LNURL",
	ArgsUsage: "url",
	Action: func(ctx *cli.Context) error {
		l, err := lnurl.FromURL(ctx.Args().First())
		if err != nil {
			return err
		}

		encoded, err := l.Encode()
		if err != nil {
			return err
		}

		fmt.Println(strings.ToUpper(encoded))

		return nil
	},
}

var derivePathCommand = &cli.Command{
	Name:      "derivepath",
	Usage:     "Show the LNURL-auth derivation path for a service",
	ArgsUsage: "lnurl",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "seed",
			Usage: "hex encoded wallet seed",
		},
		&cli.StringFlag{
			Name:  "lnurl",
			Usage: "The LNURL of the service",
		},
	},
	Action: func(ctx *cli.Context) error {
		master, err := masterKey(ctx)
		if err != nil {
			return err
		}

		l, err := lnurlArg(ctx)
		if err != nil {
			return err
		}

		u, err := l.ParsedURL()
		if err != nil {
			return err
		}

		hashingKey, err := lnurl.HashingKey(master)
		if err != nil {
			return err
		}

		path, err := lnurl.DeriveAuthPath(hashingKey, u)
		if err != nil {
			return err
		}

		fmt.Println(path)

		return nil
	},
}

// masterKey builds the LNURL-auth master key from the --seed flag.
func masterKey(ctx *cli.Context) (*hdkeychain.ExtendedKey, error) {
	if ctx.String("seed") == "" {
		return nil, fmt.Errorf("missing '--seed' flag")
	}

	seed, err := hex.DecodeString(ctx.String("seed"))
	if err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	return hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
}
