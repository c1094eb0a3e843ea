package lnurl

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/lightningnetwork/lnd/lnwire"
)

// Tag identifies the kind of LNURL flow a service response belongs to.
type Tag string

const (
	// TagPayRequest marks an LNURL-pay response (LUD-06).
	TagPayRequest Tag = "payRequest"

	// TagWithdrawRequest marks an LNURL-withdraw response (LUD-03).
	TagWithdrawRequest Tag = "withdrawRequest"

	// TagChannelRequest marks an LNURL-channel response (LUD-02).
	TagChannelRequest Tag = "channelRequest"

	// TagLogin marks an LNURL-auth challenge (LUD-04). It never appears
	// in a JSON response, it is carried by the LNURL's own query string.
	TagLogin Tag = "login"
)

// ParseTag maps a response tag string onto one of the known response tags.
func ParseTag(s string) (Tag, error) {
	switch Tag(s) {
	case TagPayRequest, TagWithdrawRequest, TagChannelRequest:
		return Tag(s), nil

	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnknownTag, s)
	}
}

// DefaultMinWithdrawable is the minWithdrawable a withdraw service is
// assumed to accept when it leaves the field out. It is not filled in at
// decode time, callers apply it themselves.
const DefaultMinWithdrawable = lnwire.MilliSatoshi(1)

// Status is the status field of a callback response envelope.
type Status string

const (
	// StatusOK marks a successful callback.
	StatusOK Status = "OK"

	// StatusError marks a failed callback, Reason says why.
	StatusError Status = "ERROR"
)

// StatusResponse is the envelope every LNURL callback answers with, on its
// own or alongside flow specific fields.
type StatusResponse struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// LnURLResponse is one of *PayResponse, *WithdrawResponse or
// *ChannelResponse.
type LnURLResponse interface {
	// LnURLTag returns the tag the response was decoded from.
	LnURLTag() Tag

	// CallbackURL returns the second level url of the flow.
	CallbackURL() string
}

type PayResponse struct {
	// Callback is the URL from LN SERVICE which will accept the pay
	// request parameters.
	Callback string `json:"callback"`

	// MaxSendable is the max amount LN SERVICE is willing to receive.
	MaxSendable lnwire.MilliSatoshi `json:"maxSendable"`

	// MinSendable is the min amount LN SERVICE is willing to receive, can
	// not be less than 1 or more than `maxSendable`.
	MinSendable lnwire.MilliSatoshi `json:"minSendable" validate:"ltefield=MaxSendable"`

	// Metadata json which must be presented as raw string here, this is
	// required to pass signature verification at a later step.
	Metadata string `json:"metadata"`

	// Tag of the LNURL.
	Tag Tag `json:"tag"`

	// CommentAllowed is the max length of a comment the service accepts,
	// nil if it does not mention comments (LUD-12).
	CommentAllowed *uint32 `json:"commentAllowed,omitempty"`

	// AllowsNostr is set if the service accepts zap requests (NIP-57).
	AllowsNostr *bool `json:"allowsNostr,omitempty"`

	// NostrPubkey is the x-only key the service signs zap receipts with.
	NostrPubkey string `json:"nostrPubkey,omitempty" validate:"omitempty,hexadecimal,len=64"`
}

func (p *PayResponse) requiredFields() []string {
	return []string{"callback", "maxSendable", "minSendable", "metadata"}
}

func (p *PayResponse) LnURLTag() Tag       { return TagPayRequest }
func (p *PayResponse) CallbackURL() string { return p.Callback }

// MetadataHash is the sha256 of the raw metadata string, which a pay
// invoice must commit to as its description hash.
func (p *PayResponse) MetadataHash() [32]byte {
	return sha256.Sum256([]byte(p.Metadata))
}

// MetadataEntries parses the metadata into its [mime, value] entries.
func (p *PayResponse) MetadataEntries() ([][]string, error) {
	var entries [][]string
	if err := json.Unmarshal([]byte(p.Metadata), &entries); err != nil {
		return nil, fmt.Errorf("could not parse metadata: %w", err)
	}

	return entries, nil
}

// Description returns the mandatory text/plain metadata entry.
func (p *PayResponse) Description() (string, error) {
	entries, err := p.MetadataEntries()
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		if len(e) == 2 && e[0] == "text/plain" {
			return e[1], nil
		}
	}

	return "", fmt.Errorf("response metadata does not contain the " +
		"required 'text/plain' field")
}

type WithdrawResponse struct {
	// DefaultDescription is a default withdrawal invoice description.
	DefaultDescription string `json:"defaultDescription"`

	// Callback is a second-level url which accepts a withdrawal lightning
	// invoice as query parameter.
	Callback string `json:"callback"`

	// K1 is an ephemeral secret which allows the wallet to withdraw.
	K1 string `json:"k1"`

	// MaxWithdrawable is the max amount the user can withdraw.
	MaxWithdrawable lnwire.MilliSatoshi `json:"maxWithdrawable"`

	// MinWithdrawable is optional. See DefaultMinWithdrawable.
	MinWithdrawable *lnwire.MilliSatoshi `json:"minWithdrawable,omitempty"`

	// Tag of the LNURL.
	Tag Tag `json:"tag"`
}

func (w *WithdrawResponse) requiredFields() []string {
	return []string{
		"defaultDescription", "callback", "k1", "maxWithdrawable",
	}
}

func (w *WithdrawResponse) LnURLTag() Tag       { return TagWithdrawRequest }
func (w *WithdrawResponse) CallbackURL() string { return w.Callback }

type ChannelResponse struct {
	// URI is the remote node address, node_key@ip_address:port_number.
	URI string `json:"uri"`

	// Callback is a second-level URL which initiates an OpenChannel
	// message from the target LN node.
	Callback string `json:"callback"`

	// K1 identifies the wallet when using the callback URL.
	K1 string `json:"k1"`

	// Tag of the LNURL.
	Tag Tag `json:"tag"`
}

func (c *ChannelResponse) requiredFields() []string {
	return []string{"uri", "callback", "k1"}
}

func (c *ChannelResponse) LnURLTag() Tag       { return TagChannelRequest }
func (c *ChannelResponse) CallbackURL() string { return c.Callback }

// InvoiceResponse is what a pay callback returns.
type InvoiceResponse struct {
	// PayRequest is a bech32-serialized lightning invoice.
	PayRequest string `json:"pr"`

	// Routes is kept for compatibility, it is always an empty array.
	Routes []json.RawMessage `json:"routes"`

	// HodlInvoice is set if the invoice will be held by the service.
	HodlInvoice *bool `json:"hodlInvoice,omitempty"`

	// SuccessActionParams is the raw success action, see SuccessAction.
	SuccessActionParams *SuccessActionParams `json:"successAction,omitempty"`

	// Verify is the LUD-21 url to poll for settlement.
	Verify string `json:"verify,omitempty"`
}

func (i *InvoiceResponse) requiredFields() []string {
	return []string{"pr"}
}

// SuccessAction returns the decoded success action, or nil if the service
// did not send one.
func (i *InvoiceResponse) SuccessAction() SuccessAction {
	if i.SuccessActionParams == nil {
		return nil
	}

	return SuccessActionFromParams(*i.SuccessActionParams)
}

// VerifyResponse is the LUD-21 answer on an invoice's verify url.
type VerifyResponse struct {
	// Settled is set once the invoice has been paid.
	Settled bool `json:"settled"`

	// Preimage is the hex payment preimage, once settled.
	Preimage *string `json:"preimage"`

	// PayRequest is the invoice being verified.
	PayRequest string `json:"pr"`
}

func (v *VerifyResponse) requiredFields() []string {
	return []string{"settled", "pr"}
}
