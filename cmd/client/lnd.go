package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ellemouton/lnurl"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
)

const paymentTimeoutSeconds = 60

// payInvoice pays invoice through lnd's router and waits for the final
// payment state.
func payInvoice(ctx context.Context, lnd *lnurl.LndServices, invoice string,
	maxFee lnwire.MilliSatoshi) (lntypes.Preimage, error) {

	stream, err := lnd.Router.SendPaymentV2(
		ctx, &routerrpc.SendPaymentRequest{
			PaymentRequest: invoice,
			FeeLimitMsat:   int64(maxFee),
			TimeoutSeconds: paymentTimeoutSeconds,
		},
	)
	if err != nil {
		return lntypes.Preimage{}, err
	}

	for {
		payment, err := stream.Recv()
		if err != nil {
			return lntypes.Preimage{}, err
		}

		switch payment.Status {
		case lnrpc.Payment_SUCCEEDED:
			return lntypes.MakePreimageFromStr(
				payment.PaymentPreimage,
			)

		case lnrpc.Payment_FAILED:
			return lntypes.Preimage{}, fmt.Errorf("payment failed: "+
				"%v", payment.FailureReason)
		}
	}
}

// addInvoice creates an invoice of amt in lnd.
func addInvoice(ctx context.Context, lnd *lnurl.LndServices,
	amt lnwire.MilliSatoshi, memo string) (string, error) {

	resp, err := lnd.Client.AddInvoice(ctx, &lnrpc.Invoice{
		Memo:      memo,
		ValueMsat: int64(amt),
	})
	if err != nil {
		return "", err
	}

	return resp.PaymentRequest, nil
}

// connectPeer connects lnd to the node at uri, node_key@host:port. A node
// that is already a peer is left as is.
func connectPeer(ctx context.Context, lnd *lnurl.LndServices,
	uri string) error {

	parts := strings.Split(uri, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid node uri: %s", uri)
	}
	pubKey, host := parts[0], parts[1]

	peers, err := lnd.Client.ListPeers(ctx, &lnrpc.ListPeersRequest{})
	if err != nil {
		return err
	}

	for _, peer := range peers.Peers {
		if peer.PubKey == pubKey {
			return nil
		}
	}

	_, err = lnd.Client.ConnectPeer(ctx, &lnrpc.ConnectPeerRequest{
		Addr: &lnrpc.LightningAddress{
			Pubkey: pubKey,
			Host:   host,
		},
	})

	return err
}
