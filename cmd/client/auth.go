package main

import (
	"fmt"

	"github.com/ellemouton/lnurl"
	"github.com/urfave/cli/v2"
)

var authCommand = &cli.Command{
	Name:      "auth",
	Usage:     "Log in to a service with LNURL-auth",
	ArgsUsage: "lnurl",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "lnurl",
			Usage: "The login LNURL.",
		},
		&cli.StringFlag{
			Name:  "seed",
			Usage: "hex encoded wallet seed the linking keys are " +
				"derived from",
		},
	},
	Action: login,
}

func login(ctx *cli.Context) error {
	l, err := lnurlArg(ctx)
	if err != nil {
		return err
	}

	if !l.IsLogin() {
		return fmt.Errorf("%w: not a login lnurl", lnurl.ErrInvalidLnURL)
	}

	master, err := masterKey(ctx)
	if err != nil {
		return err
	}

	linkingKey, err := lnurl.LinkingKey(master, l)
	if err != nil {
		return err
	}

	sig, err := lnurl.SignChallenge(linkingKey, l.K1())
	if err != nil {
		return err
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	err = client.Auth(ctx.Context, l, sig, linkingKey.PubKey())
	if err != nil {
		return err
	}

	fmt.Println("Logged in")

	return nil
}
