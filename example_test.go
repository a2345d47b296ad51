package ftp_test

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pior/ftp"
)

func ExampleServer() {
	cfg := ftp.DefaultConfig()
	cfg.Addr = "127.0.0.1:2121"
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	srv, err := ftp.NewServer(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}

	stats := srv.Stats()
	log.Printf("served %d connections, %d commands", stats.ConnsAccepted, stats.Commands)
}

func ExampleLoadConfig() {
	cfg, err := ftp.LoadConfig("/etc/ftpd.toml")
	if errors.Is(err, ftp.ErrInvalidConfig) {
		log.Fatalf("bad config: %v", err)
	}
	if err != nil {
		log.Fatal(err)
	}

	srv, err := ftp.NewServer(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()
}
