package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/pior/ftp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the control-channel server",
		Long: `Run the control-channel server until SIGINT or SIGTERM.

Settings come from a TOML file; keys missing from it keep their defaults.

Examples:
  ftpd serve --config /etc/ftpd.toml
  ftpd serve --addr 127.0.0.1:2121`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ftp.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = ftp.LoadConfig(configPath); err != nil {
					return err
				}
			}
			if addr != "" {
				cfg.Addr = addr
			}

			logger, closer, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()
			cfg.Logger = logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path (TOML)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config file")
	return cmd
}

func serve(ctx context.Context, cfg ftp.Config) error {
	srv, err := ftp.NewServer(cfg)
	if err != nil {
		return err
	}

	err = srv.ListenAndServe(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	closeErr := srv.Close()

	stats := srv.Stats()
	cfg.Logger.Info("server stopped",
		"accepted", stats.ConnsAccepted,
		"rejected", stats.ConnsRejected,
		"refused", stats.ConnsRefused,
		"commands", stats.Commands,
		"decode_errors", stats.DecodeErrors,
	)
	return errors.Join(err, closeErr)
}
