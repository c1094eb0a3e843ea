package lnurl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/imroc/req"
	"github.com/lightningnetwork/lnd/lnwire"
)

// ClientConfig holds the transport settings of a Client.
type ClientConfig struct {
	// Proxy is an optional proxy url, <protocol>://<user>:<pass>@host:port.
	Proxy string

	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration
}

// Client performs the GET requests of every LNURL flow. It only moves bytes,
// all decoding is done by the package level decoders.
type Client struct {
	r *req.Req
}

// NewClient creates a Client from cfg. A nil cfg uses the defaults.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		httpClient.Transport = &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		}
	}

	r := req.New()
	r.SetClient(httpClient)

	return &Client{r: r}, nil
}

// MakeRequest fetches a first-level LNURL and decodes the response.
func (c *Client) MakeRequest(ctx context.Context, l LnURL) (LnURLResponse,
	error) {

	body, err := c.get(ctx, l.URL)
	if err != nil {
		return nil, err
	}

	return DecodeResponse(body)
}

// GetInvoice asks a pay service for an invoice of msats. See PayURL for
// zapRequest and comment.
func (c *Client) GetInvoice(ctx context.Context, pay *PayResponse,
	msats lnwire.MilliSatoshi, zapRequest, comment string) (
	*InvoiceResponse, error) {

	target, err := PayURL(pay, msats, zapRequest, comment)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	return DecodeInvoiceResponse(body)
}

// Verify polls a LUD-21 verify url.
func (c *Client) Verify(ctx context.Context, verifyURL string) (
	*VerifyResponse, error) {

	body, err := c.get(ctx, verifyURL)
	if err != nil {
		return nil, err
	}

	return DecodeStatus[VerifyResponse](body)
}

// DoWithdrawal hands invoice to a withdraw service.
func (c *Client) DoWithdrawal(ctx context.Context, w *WithdrawResponse,
	invoice string) error {

	return c.ack(ctx, WithdrawURL(w, invoice))
}

// OpenChannel asks a channel service to open a channel to nodeKey.
func (c *Client) OpenChannel(ctx context.Context, ch *ChannelResponse,
	nodeKey *btcec.PublicKey, private bool) error {

	return c.ack(ctx, ChannelURL(ch, nodeKey, private))
}

// Auth answers a login challenge.
func (c *Client) Auth(ctx context.Context, l LnURL, sig *ecdsa.Signature,
	key *btcec.PublicKey) error {

	return c.ack(ctx, AuthURL(l, sig, key))
}

func (c *Client) ack(ctx context.Context, target string) error {
	body, err := c.get(ctx, target)
	if err != nil {
		return err
	}

	_, err = DecodeStatus[struct{}](body)
	return err
}

// get performs a GET and returns the body untouched. A non success status
// is an *HTTPError, unless the body is an ERROR envelope explaining it.
func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	log.Debugf("GET %s", redactURL(target))

	resp, err := c.r.Get(target, ctx)
	if err != nil {
		return nil, fmt.Errorf("GET request error: %w", err)
	}

	body := resp.Bytes()
	if code := resp.Response().StatusCode; code >= 300 {
		log.Debugf("GET %s returned status %d", redactURL(target), code)

		var svcErr *ServiceError
		_, err := DecodeStatus[struct{}](body)
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}

		return nil, &HTTPError{StatusCode: code}
	}

	return body, nil
}

// sensitiveParams are query parameters kept out of the logs.
var sensitiveParams = []string{"k1", "sig", "pr", "nostr", "comment"}

func redactURL(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "<unparsable url>"
	}

	q := u.Query()
	for _, p := range sensitiveParams {
		if q.Has(p) {
			q.Set(p, "redacted")
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}
