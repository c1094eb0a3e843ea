package lnurl

import (
	"fmt"
	"os"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/macaroons"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"gopkg.in/macaroon.v2"
)

// LndConfig locates an lnd node's gRPC interface.
type LndConfig struct {
	// Host is the host:port of lnd's RPC server.
	Host string

	// TLSPath is the path to lnd's tls.cert.
	TLSPath string

	// MacaroonPath is the path to the macaroon to authenticate with.
	MacaroonPath string
}

// LndServices bundles the lnd RPC clients used by the client and server.
type LndServices struct {
	Client lnrpc.LightningClient
	Router routerrpc.RouterClient

	conn *grpc.ClientConn
}

// Close tears down the gRPC connection.
func (s *LndServices) Close() error {
	return s.conn.Close()
}

// readMacaroon loads a binary macaroon as per-RPC credentials.
func readMacaroon(path string) (macaroons.MacaroonCredential, error) {
	macBytes, err := os.ReadFile(path)
	if err != nil {
		return macaroons.MacaroonCredential{}, fmt.Errorf("unable to "+
			"read macaroon: %w", err)
	}

	mac := &macaroon.Macaroon{}
	if err := mac.UnmarshalBinary(macBytes); err != nil {
		return macaroons.MacaroonCredential{}, fmt.Errorf("unable to "+
			"decode macaroon: %w", err)
	}

	return macaroons.NewMacaroonCredential(mac)
}

// ConnectLnd dials lnd over TLS, authenticating with the macaroon.
func ConnectLnd(cfg *LndConfig) (*LndServices, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("lnd host not set")
	}

	creds, err := credentials.NewClientTLSFromFile(cfg.TLSPath, "")
	if err != nil {
		return nil, fmt.Errorf("unable to load tls cert: %w", err)
	}

	mac, err := readMacaroon(cfg.MacaroonPath)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(
		cfg.Host, grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(mac),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to lnd: %w", err)
	}

	return &LndServices{
		Client: lnrpc.NewLightningClient(conn),
		Router: routerrpc.NewRouterClient(conn),
		conn:   conn,
	}, nil
}
