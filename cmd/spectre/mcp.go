package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Rostezkiy/spectre/api"
	"github.com/Rostezkiy/spectre/query"
	"github.com/Rostezkiy/spectre/registry"
)

func newMCPCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose the captured data as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
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

			// Stdout belongs to the MCP transport; logs must stay on stderr.
			srv := api.NewServer(reg, query.NewTranslator(s, slog.Default()), slog.Default())
			mcpServer := mcp.NewServer(&mcp.Implementation{
				Name:    "spectre",
				Version: version,
			}, nil)
			srv.RegisterMCP(mcpServer, s)

			slog.Info("mcp server ready", "resources", reg.Names())
			return mcpServer.Run(ctx, &mcp.StdioTransport{})
		},
	}
	return cmd
}
