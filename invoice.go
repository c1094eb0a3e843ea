package lnurl

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
)

// VerifyInvoice decodes the invoice returned by a pay callback and checks
// that it is for msats and commits to the pay response's metadata, or to the
// zap request if one was sent.
func VerifyInvoice(pay *PayResponse, resp *InvoiceResponse,
	msats lnwire.MilliSatoshi, zapRequest string,
	net *chaincfg.Params) (*zpay32.Invoice, error) {

	inv, err := zpay32.Decode(resp.PayRequest, net)
	if err != nil {
		return nil, fmt.Errorf("unable to decode invoice: %w", err)
	}

	if inv.MilliSat == nil || *inv.MilliSat != msats {
		return nil, fmt.Errorf("%w: invoice amount does not match "+
			"the requested %d msat", ErrInvalidAmount,
			uint64(msats))
	}

	// Ensure that the invoice description hash matches the metadata
	// received before.
	hash := pay.MetadataHash()
	if zapRequest != "" {
		hash = sha256.Sum256([]byte(zapRequest))
	}

	if inv.DescriptionHash == nil ||
		!bytes.Equal(inv.DescriptionHash[:], hash[:]) {

		return nil, fmt.Errorf("invalid invoice description hash")
	}

	return inv, nil
}
