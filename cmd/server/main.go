package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ellemouton/lnurl"
	"github.com/jessevdk/go-flags"
)

func main() {
	if err := run(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		fmt.Fprintf(os.Stderr, "[lnurl-server] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	setupLogging(cfg.DebugLevel)

	lnd, err := lnurl.ConnectLnd(&lnurl.LndConfig{
		Host:         cfg.Lnd.Host,
		TLSPath:      cfg.Lnd.TLSPath,
		MacaroonPath: cfg.Lnd.MacaroonPath,
	})
	if err != nil {
		return err
	}
	defer lnd.Close()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	server := lnurl.NewServer(cfg.serverConfig(), lnd.Client)

	return server.Run(ctx)
}
