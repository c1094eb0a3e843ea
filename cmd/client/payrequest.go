package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ellemouton/lnurl"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/urfave/cli/v2"
)

var payRequestCommand = &cli.Command{
	Name:        "pay",
	Usage:       "Pay to LNURL",
	Description: `Pay to an LNURL-pay code or a lightning address`,
	ArgsUsage:   "lnurl",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "lnurl",
			Usage: "The LNURL to pay to.",
		},
		&cli.Uint64Flag{
			Name:  "amt",
			Usage: "The amt of millisats to pay",
		},
		&cli.Int64Flag{
			Name:  "maxfee",
			Usage: "max fee to pay for this payment (in millisats)",
			Value: 1000,
		},
		&cli.StringFlag{
			Name:  "comment",
			Usage: "comment to send with the payment",
		},
		&cli.StringFlag{
			Name:  "nostrkey",
			Usage: "hex nostr private key, sends the payment as a zap",
		},
		&cli.StringFlag{
			Name:  "zapto",
			Usage: "hex nostr pubkey of the zapped user",
		},
		&cli.StringSliceFlag{
			Name:  "relay",
			Usage: "relay the zap receipt should be published to",
		},
	},
	Action: payToLNURL,
}

func payToLNURL(ctx *cli.Context) error {
	l, err := lnurlArg(ctx)
	if err != nil {
		return err
	}

	net, err := networkParams(ctx)
	if err != nil {
		return err
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}

	// Make a GET request to the decoded LNURL.
	resp, err := client.MakeRequest(ctx.Context, l)
	if err != nil {
		return err
	}

	payResp, ok := resp.(*lnurl.PayResponse)
	if !ok {
		return fmt.Errorf("expected a pay request, got %s",
			resp.LnURLTag())
	}

	// Ensure that the response contains the necessary metadata field.
	desc, err := payResp.Description()
	if err != nil {
		return err
	}
	fmt.Printf("Paying to: %s\n", desc)

	millisats, err := promptAmount(
		lnwire.MilliSatoshi(ctx.Uint64("amt")), payResp.MinSendable,
		payResp.MaxSendable,
	)
	if err != nil {
		return err
	}

	var zapRequest string
	if ctx.String("nostrkey") != "" {
		if ctx.String("zapto") == "" {
			return fmt.Errorf("missing '--zapto' flag")
		}

		encoded, err := l.Encode()
		if err != nil {
			return err
		}

		ev, err := lnurl.NewZapRequest(
			ctx.String("nostrkey"), ctx.String("zapto"), payResp,
			millisats, encoded, ctx.StringSlice("relay"),
			ctx.String("comment"),
		)
		if err != nil {
			return err
		}

		zapRequest, err = lnurl.ZapRequestJSON(ev)
		if err != nil {
			return err
		}
	}

	// A zap carries its comment as the event content.
	comment := ctx.String("comment")
	if zapRequest != "" {
		comment = ""
	}

	invoice, err := client.GetInvoice(
		ctx.Context, payResp, millisats, zapRequest, comment,
	)
	if err != nil {
		return err
	}

	if _, err := lnurl.VerifyInvoice(
		payResp, invoice, millisats, zapRequest, net,
	); err != nil {
		return err
	}

	lnd, err := getLND(ctx)
	if err != nil {
		return fmt.Errorf("could not connect to LND: %w", err)
	}
	defer lnd.Close()

	preimage, err := payInvoice(
		ctx.Context, lnd, invoice.PayRequest,
		lnwire.MilliSatoshi(ctx.Int64("maxfee")),
	)
	if err != nil {
		return fmt.Errorf("could not pay invoice: %w", err)
	}

	fmt.Printf("Successful payment! Preimage: %s\n", preimage)

	return printSuccessAction(invoice.SuccessAction(), preimage)
}

// promptAmount returns amt if it lies within the bounds, otherwise it asks
// the user to enter a valid amount until they do.
func promptAmount(amt, minSendable,
	maxSendable lnwire.MilliSatoshi) (lnwire.MilliSatoshi, error) {

	reader := bufio.NewReader(os.Stdin)
	for amt < minSendable || amt > maxSendable {
		fmt.Printf("Enter an amount (in millisatoshis) between "+
			"%d and %d\n", uint64(minSendable), uint64(maxSendable))

		userInput, err := reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("could not read from console: %w",
				err)
		}
		userInput = strings.TrimSpace(userInput)

		parsed, err := strconv.ParseUint(userInput, 10, 64)
		if err != nil {
			fmt.Printf("error parsing input: %v\n", err)
			continue
		}
		amt = lnwire.MilliSatoshi(parsed)

		if amt < minSendable || amt > maxSendable {
			fmt.Printf("Invalid amount. Expected an amount "+
				"between %d and %d, got %d\n",
				uint64(minSendable), uint64(maxSendable),
				uint64(amt))
		}
	}

	return amt, nil
}

func printSuccessAction(action lnurl.SuccessAction,
	preimage lntypes.Preimage) error {

	switch a := action.(type) {
	case nil:
		return nil

	case lnurl.MessageAction:
		fmt.Println(a.Message)

	case lnurl.URLAction:
		fmt.Printf("%s: %s\n", a.Description, a.URL)

	case *lnurl.AESParams:
		plaintext, err := a.Decrypt(preimage)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", a.Description, plaintext)

	default:
		fmt.Printf("Unsupported success action: %s\n", a.ActionTag())
	}

	return nil
}
