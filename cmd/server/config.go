package main

import (
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/ellemouton/lnurl"
	"github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/lnwire"
)

const (
	defaultProtocol       = "http"
	defaultHost           = "localhost"
	defaultPort           = 8080
	defaultListenAddr     = ":8080"
	defaultLndHost        = "localhost:10009"
	defaultMinSendable    = 1000
	defaultMaxSendable    = 100000000
	defaultCommentAllowed = 144
	defaultMetadataExpiry = 10 * time.Minute
	defaultDebugLevel     = "info"
)

// Config is the lnurl-server configuration, read from the command line and
// an optional ini file.
type Config struct {
	ConfigFile string `long:"configfile" description:"Path to an ini configuration file"`
	DebugLevel string `long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical, off}"`

	Protocol   string `long:"protocol" description:"Scheme the service is reached on, http or https"`
	Host       string `long:"host" description:"Public host of the service"`
	Port       int    `long:"port" description:"Public port of the service"`
	ListenAddr string `long:"listen" description:"Interface and port to listen on"`

	MinSendable    uint64        `long:"minsendable" description:"Smallest payment accepted, in msat"`
	MaxSendable    uint64        `long:"maxsendable" description:"Largest payment accepted, in msat"`
	CommentAllowed uint32        `long:"commentallowed" description:"Max comment length, 0 disables comments"`
	MetadataExpiry time.Duration `long:"metadataexpiry" description:"How long a pay request stays valid"`

	Description        string `long:"description" description:"Text shown to payers"`
	SuccessDescription string `long:"successdescription" description:"Clear text part of the success action"`
	SuccessMessage     string `long:"successmessage" description:"Message revealed to the payer once paid"`

	Lnd *LndConfig `group:"lnd" namespace:"lnd"`
}

// LndConfig holds the lnd connection flags.
type LndConfig struct {
	Host         string `long:"host" description:"lnd instance rpc address"`
	TLSPath      string `long:"tlspath" description:"Path to lnd's tls cert"`
	MacaroonPath string `long:"macaroonpath" description:"Path to lnd's invoice macaroon"`
}

// DefaultConfig returns the configuration used for anything not set.
func DefaultConfig() Config {
	return Config{
		DebugLevel:         defaultDebugLevel,
		Protocol:           defaultProtocol,
		Host:               defaultHost,
		Port:               defaultPort,
		ListenAddr:         defaultListenAddr,
		MinSendable:        defaultMinSendable,
		MaxSendable:        defaultMaxSendable,
		CommentAllowed:     defaultCommentAllowed,
		MetadataExpiry:     defaultMetadataExpiry,
		Description:        "Payment to an lnurl-server",
		SuccessDescription: "Thank you for your payment",
		SuccessMessage:     "Your payment was received",
		Lnd: &LndConfig{
			Host: defaultLndHost,
		},
	}
}

// LoadConfig parses the command line, then the config file if one is given,
// then the command line again so that flags take precedence.
func LoadConfig() (*Config, error) {
	preCfg := DefaultConfig()
	if _, err := flags.Parse(&preCfg); err != nil {
		return nil, err
	}

	cfg := preCfg
	if preCfg.ConfigFile != "" {
		parser := flags.NewParser(&cfg, flags.Default)
		err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("unable to parse config file: %w",
				err)
		}

		if _, err := parser.Parse(); err != nil {
			return nil, err
		}
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks the config for values the server can not run with.
func ValidateConfig(cfg *Config) error {
	if cfg.Protocol != "http" && cfg.Protocol != "https" {
		return fmt.Errorf("protocol must be http or https, got %s",
			cfg.Protocol)
	}

	if cfg.MinSendable == 0 || cfg.MinSendable > cfg.MaxSendable {
		return fmt.Errorf("minsendable must be between 1 and "+
			"maxsendable (%d)", cfg.MaxSendable)
	}

	if cfg.MetadataExpiry <= 0 {
		return fmt.Errorf("metadataexpiry must be positive")
	}

	if _, ok := btclog.LevelFromString(cfg.DebugLevel); !ok {
		return fmt.Errorf("invalid debuglevel: %s", cfg.DebugLevel)
	}

	return nil
}

// serverConfig maps the configuration onto the library's server config.
func (c *Config) serverConfig() *lnurl.ServerConfig {
	return &lnurl.ServerConfig{
		Protocol:           c.Protocol,
		Host:               c.Host,
		Port:               c.Port,
		ListenAddr:         c.ListenAddr,
		MinSendable:        lnwire.MilliSatoshi(c.MinSendable),
		MaxSendable:        lnwire.MilliSatoshi(c.MaxSendable),
		CommentAllowed:     c.CommentAllowed,
		Description:        c.Description,
		SuccessDescription: c.SuccessDescription,
		SuccessMessage:     c.SuccessMessage,
		MetadataExpiry:     c.MetadataExpiry,
	}
}

// setupLogging routes the library's logs to stdout at the configured level.
func setupLogging(level string) {
	backend := btclog.NewBackend(os.Stdout)
	logger := backend.Logger(lnurl.Subsystem)

	lvl, _ := btclog.LevelFromString(level)
	logger.SetLevel(lvl)

	lnurl.UseLogger(logger)
}
