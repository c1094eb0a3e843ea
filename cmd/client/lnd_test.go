package main

import (
	"context"
	"errors"
	"testing"

	"github.com/ellemouton/lnurl"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

const testPubKey = "02eec7245d6b7d2ccb30380bfbe2a3648cd7a942653f5aa3" +
	"40edcea1f283686619"

// mockPeers answers ListPeers from a fixed set and records ConnectPeer
// calls.
type mockPeers struct {
	lnrpc.LightningClient

	peers      []string
	connectErr error
	connected  []*lnrpc.LightningAddress
}

func (m *mockPeers) ListPeers(_ context.Context, _ *lnrpc.ListPeersRequest,
	_ ...grpc.CallOption) (*lnrpc.ListPeersResponse, error) {

	resp := &lnrpc.ListPeersResponse{}
	for _, pubKey := range m.peers {
		resp.Peers = append(resp.Peers, &lnrpc.Peer{PubKey: pubKey})
	}

	return resp, nil
}

func (m *mockPeers) ConnectPeer(_ context.Context,
	in *lnrpc.ConnectPeerRequest,
	_ ...grpc.CallOption) (*lnrpc.ConnectPeerResponse, error) {

	m.connected = append(m.connected, in.Addr)
	if m.connectErr != nil {
		return nil, m.connectErr
	}

	return &lnrpc.ConnectPeerResponse{}, nil
}

func TestConnectPeer(t *testing.T) {
	t.Parallel()

	errDial := errors.New("dial tcp 1.2.3.4:9735: connection refused")

	tests := []struct {
		name       string
		uri        string
		peers      []string
		connectErr error
		connects   int
		expectErr  error
		invalid    bool
	}{
		{
			name:     "not connected",
			uri:      testPubKey + "@1.2.3.4:9735",
			connects: 1,
		},
		{
			name:     "already a peer",
			uri:      testPubKey + "@1.2.3.4:9735",
			peers:    []string{testPubKey},
			connects: 0,
		},
		{
			name:       "connect fails",
			uri:        testPubKey + "@1.2.3.4:9735",
			connectErr: errDial,
			connects:   1,
			expectErr:  errDial,
		},
		{
			name:    "missing host",
			uri:     testPubKey,
			invalid: true,
		},
		{
			name:    "empty pubkey",
			uri:     "@1.2.3.4:9735",
			invalid: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			mock := &mockPeers{
				peers:      test.peers,
				connectErr: test.connectErr,
			}
			lnd := &lnurl.LndServices{Client: mock}

			err := connectPeer(context.Background(), lnd, test.uri)
			switch {
			case test.invalid:
				require.ErrorContains(t, err, "invalid node uri")
				require.Empty(t, mock.connected)
				return

			case test.expectErr != nil:
				require.ErrorIs(t, err, test.expectErr)

			default:
				require.NoError(t, err)
			}

			require.Len(t, mock.connected, test.connects)
			if test.connects > 0 {
				require.Equal(t, testPubKey, mock.connected[0].Pubkey)
				require.Equal(
					t, "1.2.3.4:9735", mock.connected[0].Host,
				)
			}
		})
	}
}
