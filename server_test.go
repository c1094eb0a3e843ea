package lnurl

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// mockLnd creates real regtest invoices for the server and remembers the
// preimages it was handed.
type mockLnd struct {
	lnrpc.LightningClient

	t *testing.T

	mu        sync.Mutex
	preimages []lntypes.Preimage
	fail      bool
}

func (m *mockLnd) AddInvoice(_ context.Context, in *lnrpc.Invoice,
	_ ...grpc.CallOption) (*lnrpc.AddInvoiceResponse, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return nil, errors.New("lnd unavailable")
	}

	preimage, err := lntypes.MakePreimage(in.RPreimage)
	if err != nil {
		return nil, err
	}
	m.preimages = append(m.preimages, preimage)

	var descHash [32]byte
	copy(descHash[:], in.DescriptionHash)

	hash := preimage.Hash()

	return &lnrpc.AddInvoiceResponse{
		RHash: hash[:],
		PaymentRequest: newTestInvoice(
			m.t, preimage, lnwire.MilliSatoshi(in.ValueMsat),
			descHash,
		),
	}, nil
}

func (m *mockLnd) lastPreimage() lntypes.Preimage {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.preimages[len(m.preimages)-1]
}

func newTestServer(t *testing.T) (*Server, *mockLnd, *httptest.Server) {
	t.Helper()

	lnd := &mockLnd{t: t}
	cfg := &ServerConfig{
		Protocol:           "http",
		Host:               "127.0.0.1",
		MinSendable:        1000,
		MaxSendable:        100000,
		CommentAllowed:     10,
		Description:        "test service",
		SuccessDescription: "receipt",
		SuccessMessage:     "thanks for paying",
		MetadataExpiry:     time.Minute,
	}

	// The advertised callback needs the port before serving starts.
	ts := httptest.NewUnstartedServer(nil)
	u, err := url.Parse("http://" + ts.Listener.Addr().String())
	require.NoError(t, err)
	cfg.Port, err = strconv.Atoi(u.Port())
	require.NoError(t, err)

	s := NewServer(cfg, lnd)
	ts.Config.Handler = s.Handler()
	ts.Start()
	t.Cleanup(ts.Close)

	return s, lnd, ts
}

func TestServerPayRoundTrip(t *testing.T) {
	t.Parallel()

	s, lnd, _ := newTestServer(t)

	l, err := FromURL(s.PayURL())
	require.NoError(t, err)

	client, err := NewClient(nil)
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.MakeRequest(ctx, l)
	require.NoError(t, err)

	pay, ok := resp.(*PayResponse)
	require.True(t, ok)
	require.NotNil(t, pay.CommentAllowed)
	require.EqualValues(t, 10, *pay.CommentAllowed)

	desc, err := pay.Description()
	require.NoError(t, err)
	require.Contains(t, desc, "test service")

	invoice, err := client.GetInvoice(ctx, pay, 2000, "", "hi there")
	require.NoError(t, err)
	require.NotNil(t, invoice.Routes)

	_, err = VerifyInvoice(
		pay, invoice, 2000, "", &chaincfg.RegressionNetParams,
	)
	require.NoError(t, err)

	aes, ok := invoice.SuccessAction().(*AESParams)
	require.True(t, ok)
	require.Equal(t, "receipt", aes.Description)

	plaintext, err := aes.Decrypt(lnd.lastPreimage())
	require.NoError(t, err)
	require.Equal(t, "thanks for paying", plaintext)

	// The pay request id is single use.
	_, err = client.GetInvoice(ctx, pay, 2000, "", "")
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
}

func TestServerInvoiceErrors(t *testing.T) {
	t.Parallel()

	s, lnd, ts := newTestServer(t)

	client, err := NewClient(nil)
	require.NoError(t, err)

	ctx := context.Background()
	newPay := func() *PayResponse {
		resp, err := client.MakeRequest(ctx, LnURL{URL: s.PayURL()})
		require.NoError(t, err)

		return resp.(*PayResponse)
	}

	tests := []struct {
		name   string
		target func(pay *PayResponse) string
		reason string
	}{
		{
			name: "unknown id",
			target: func(*PayResponse) string {
				return ts.URL + "/invoice?id=00&amount=2000"
			},
			reason: "unknown or expired id",
		},
		{
			name: "amount too small",
			target: func(pay *PayResponse) string {
				return pay.Callback + "&amount=10"
			},
			reason: "amount must be between 1000 and 100000 msat",
		},
		{
			name: "missing amount",
			target: func(pay *PayResponse) string {
				return pay.Callback
			},
			reason: "expected 'amount' field",
		},
		{
			name: "comment too long",
			target: func(pay *PayResponse) string {
				return appendQuery(pay.Callback, "amount",
					"2000", "comment", "more than ten")
			},
			reason: "comment too long",
		},
	}

	for _, test := range tests {
		resp, err := http.Get(test.target(newPay()))
		require.NoError(t, err, test.name)

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err, test.name)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode,
			test.name)

		_, err = DecodeStatus[struct{}](body)
		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr), test.name)
		require.Equal(t, test.reason, svcErr.Reason, test.name)
	}

	lnd.mu.Lock()
	lnd.fail = true
	lnd.mu.Unlock()

	_, err = client.GetInvoice(ctx, newPay(), 2000, "", "")
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	require.Equal(t, "invoice error", svcErr.Reason)
}
