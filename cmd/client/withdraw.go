package main

import (
	"fmt"

	"github.com/ellemouton/lnurl"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/urfave/cli/v2"
)

var withdrawCommand = &cli.Command{
	Name:      "withdraw",
	Usage:     "Withdraw from an LNURL-withdraw code",
	ArgsUsage: "lnurl",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "lnurl",
			Usage: "The LNURL to withdraw from.",
		},
		&cli.Uint64Flag{
			Name:  "amt",
			Usage: "The amt of millisats to withdraw, defaults to " +
				"the max",
		},
	},
	Action: withdraw,
}

func withdraw(ctx *cli.Context) error {
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

	w, ok := resp.(*lnurl.WithdrawResponse)
	if !ok {
		return fmt.Errorf("expected a withdraw request, got %s",
			resp.LnURLTag())
	}

	minWithdrawable := lnurl.DefaultMinWithdrawable
	if w.MinWithdrawable != nil {
		minWithdrawable = *w.MinWithdrawable
	}

	amt := w.MaxWithdrawable
	if ctx.IsSet("amt") {
		amt = lnwire.MilliSatoshi(ctx.Uint64("amt"))
	}
	if amt < minWithdrawable || amt > w.MaxWithdrawable {
		return fmt.Errorf("%w: %d msat is not between %d and %d",
			lnurl.ErrInvalidAmount, uint64(amt),
			uint64(minWithdrawable), uint64(w.MaxWithdrawable))
	}

	lnd, err := getLND(ctx)
	if err != nil {
		return fmt.Errorf("could not connect to LND: %w", err)
	}
	defer lnd.Close()

	invoice, err := addInvoice(
		ctx.Context, lnd, amt, w.DefaultDescription,
	)
	if err != nil {
		return fmt.Errorf("could not create invoice: %w", err)
	}

	if err := client.DoWithdrawal(ctx.Context, w, invoice); err != nil {
		return err
	}

	fmt.Printf("Withdrawal of %d msat requested\n", uint64(amt))

	return nil
}
