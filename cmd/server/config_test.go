package main

import (
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	defaults := DefaultConfig()
	require.NoError(t, ValidateConfig(&defaults))

	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{
			name:   "unknown protocol",
			mutate: func(cfg *Config) { cfg.Protocol = "ftp" },
		},
		{
			name:   "zero min",
			mutate: func(cfg *Config) { cfg.MinSendable = 0 },
		},
		{
			name: "min above max",
			mutate: func(cfg *Config) {
				cfg.MinSendable = cfg.MaxSendable + 1
			},
		},
		{
			name:   "no expiry",
			mutate: func(cfg *Config) { cfg.MetadataExpiry = 0 },
		},
		{
			name:   "bad debuglevel",
			mutate: func(cfg *Config) { cfg.DebugLevel = "loud" },
		},
	}

	for _, test := range tests {
		cfg := DefaultConfig()
		test.mutate(&cfg)
		require.Error(t, ValidateConfig(&cfg), test.name)
	}
}

func TestServerConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MinSendable = 2000
	cfg.MetadataExpiry = time.Hour

	srvCfg := cfg.serverConfig()
	require.Equal(t, lnwire.MilliSatoshi(2000), srvCfg.MinSendable)
	require.Equal(t, lnwire.MilliSatoshi(defaultMaxSendable),
		srvCfg.MaxSendable)
	require.Equal(t, time.Hour, srvCfg.MetadataExpiry)
	require.Equal(t, cfg.SuccessMessage, srvCfg.SuccessMessage)
}
