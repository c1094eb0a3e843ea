package main

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ellemouton/lnurl"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/urfave/cli/v2"
)

var channelCommand = &cli.Command{
	Name:      "channel",
	Usage:     "Request an inbound channel from an LNURL-channel code",
	ArgsUsage: "lnurl",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "lnurl",
			Usage: "The LNURL of the channel service.",
		},
		&cli.BoolFlag{
			Name:  "private",
			Usage: "ask for a private channel",
		},
	},
	Action: requestChannel,
}

func requestChannel(ctx *cli.Context) error {
	l, err := lnurlArg(ctx)
	if err != nil {
		return err
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	resp, err := client.MakeRequest(ctx.Context, l)
	if err != nil {
		return err
	}

	ch, ok := resp.(*lnurl.ChannelResponse)
	if !ok {
		return fmt.Errorf("expected a channel request, got %s",
			resp.LnURLTag())
	}

	lnd, err := getLND(ctx)
	if err != nil {
		return fmt.Errorf("could not connect to LND: %w", err)
	}
	defer lnd.Close()

	// The service opens the channel to whichever node is connected to it,
	// so connect first.
	if err := connectPeer(ctx.Context, lnd, ch.URI); err != nil {
		return fmt.Errorf("could not connect to %s: %w", ch.URI, err)
	}

	info, err := lnd.Client.GetInfo(ctx.Context, &lnrpc.GetInfoRequest{})
	if err != nil {
		return err
	}

	keyBytes, err := hex.DecodeString(info.IdentityPubkey)
	if err != nil {
		return err
	}
	nodeKey, err := btcec.ParsePubKey(keyBytes)
	if err != nil {
		return err
	}

	err = client.OpenChannel(ctx.Context, ch, nodeKey, ctx.Bool("private"))
	if err != nil {
		return err
	}

	fmt.Println("Channel requested")

	return nil
}
