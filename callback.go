package lnurl

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/lightningnetwork/lnd/lnwire"
)

// appendQuery appends the key/value pairs to base, joining them with '?'
// or '&' depending on whether base already carries a query string.
func appendQuery(base string, kv ...string) string {
	delim := "?"
	if strings.Contains(base, "?") {
		delim = "&"
	}

	var b strings.Builder
	b.WriteString(base)
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteString(delim)
		b.WriteString(kv[i])
		b.WriteString("=")
		b.WriteString(url.QueryEscape(kv[i+1]))
		delim = "&"
	}

	return b.String()
}

// PayURL builds the pay callback for msats. At most one of zapRequest, a
// serialized NIP-57 event, and comment may be set; empty means absent. The
// amount and comment are checked against the service's limits first.
func PayURL(pay *PayResponse, msats lnwire.MilliSatoshi, zapRequest,
	comment string) (string, error) {

	if msats < pay.MinSendable || msats > pay.MaxSendable {
		return "", fmt.Errorf("%w: %d msat is not between %d and %d",
			ErrInvalidAmount, uint64(msats), uint64(pay.MinSendable),
			uint64(pay.MaxSendable))
	}

	if comment != "" && pay.CommentAllowed != nil {
		n := utf8.RuneCountInString(comment)
		if n > int(*pay.CommentAllowed) {
			return "", fmt.Errorf("%w: %d characters, at most %d "+
				"allowed", ErrInvalidComment, n,
				*pay.CommentAllowed)
		}
	}

	amount := fmt.Sprintf("%d", uint64(msats))

	switch {
	case zapRequest != "" && comment != "":
		return "", fmt.Errorf("%w: a zap request can not carry a "+
			"comment", ErrInvalidComment)

	case zapRequest != "":
		return appendQuery(
			pay.Callback, "amount", amount, "nostr", zapRequest,
		), nil

	case comment != "":
		return appendQuery(
			pay.Callback, "amount", amount, "comment", comment,
		), nil

	default:
		return appendQuery(pay.Callback, "amount", amount), nil
	}
}

// WithdrawURL builds the withdraw callback handing invoice to the service.
func WithdrawURL(w *WithdrawResponse, invoice string) string {
	return appendQuery(w.Callback, "k1", w.K1, "pr", invoice)
}

// ChannelURL builds the channel callback asking the service to open a
// channel to nodeKey.
func ChannelURL(c *ChannelResponse, nodeKey *btcec.PublicKey,
	private bool) string {

	priv := "0"
	if private {
		priv = "1"
	}

	return appendQuery(
		c.Callback, "k1", c.K1,
		"remoteid", hex.EncodeToString(nodeKey.SerializeCompressed()),
		"private", priv,
	)
}

// AuthURL builds the auth callback. The login LNURL already carries
// tag=login and k1, the DER signature and linking key are appended to it.
func AuthURL(l LnURL, sig *ecdsa.Signature, key *btcec.PublicKey) string {
	return appendQuery(
		l.URL, "sig", hex.EncodeToString(sig.Serialize()),
		"key", hex.EncodeToString(key.SerializeCompressed()),
	)
}
