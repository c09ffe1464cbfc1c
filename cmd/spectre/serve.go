package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Rostezkiy/spectre/api"
	"github.com/Rostezkiy/spectre/query"
	"github.com/Rostezkiy/spectre/registry"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the captured data as a REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			s, db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg, err := registry.Load(ctx, s, cfg.Resources)
			if err != nil {
				return err
			}
			slog.Info("resources registered", "names", reg.Names())

			srv := api.NewServer(reg, query.NewTranslator(s, slog.Default()), slog.Default())
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")

	return cmd
}
