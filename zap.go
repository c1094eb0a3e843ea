package lnurl

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/nbd-wtf/go-nostr"
)

// KindZapRequest is the nostr event kind of a NIP-57 zap request.
const KindZapRequest = 9734

// NewZapRequest builds and signs a zap request paying msats to the nostr
// user recipient through the pay service behind lnurlText. The service must
// advertise nostr support.
func NewZapRequest(privKey, recipient string, pay *PayResponse,
	msats lnwire.MilliSatoshi, lnurlText string, relays []string,
	content string) (*nostr.Event, error) {

	if pay.AllowsNostr == nil || !*pay.AllowsNostr ||
		pay.NostrPubkey == "" {

		return nil, ErrZapsUnsupported
	}

	pubKey, err := nostr.GetPublicKey(privKey)
	if err != nil {
		return nil, fmt.Errorf("invalid nostr key: %w", err)
	}

	ev := &nostr.Event{
		PubKey:    pubKey,
		CreatedAt: time.Now(),
		Kind:      KindZapRequest,
		Tags: nostr.Tags{
			append(nostr.Tag{"relays"}, relays...),
			nostr.Tag{"amount", fmt.Sprintf("%d", uint64(msats))},
			nostr.Tag{"lnurl", lnurlText},
			nostr.Tag{"p", recipient},
		},
		Content: content,
	}
	if err := ev.Sign(privKey); err != nil {
		return nil, fmt.Errorf("unable to sign zap request: %w", err)
	}

	return ev, nil
}

// ZapRequestJSON serializes a zap request for the pay callback's nostr
// parameter.
func ZapRequestJSON(ev *nostr.Event) (string, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
