package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Rostezkiy/spectre/capture"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var (
		startURL  string
		sessionID string
		headful   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open a browser session and capture JSON responses into the store",
		Long: `Watch launches a Chrome session, hooks its network traffic, and stores
every JSON response. Navigate by hand or pass --url to start somewhere.
Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if startURL == "" {
				startURL = cfg.BaseURL
			}

			s, db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mgr := capture.NewManager(capture.BrowserConfig{
				RemoteURL: cfg.Browser.Remote,
				Headless:  cfg.Headless() && !headful,
				Logger:    slog.Default(),
			})
			if _, err := mgr.Start(); err != nil {
				return err
			}
			defer mgr.Close()

			page, err := mgr.NewPage()
			if err != nil {
				return err
			}

			w := capture.NewWatcher(s, capture.WatcherConfig{
				SessionID:      sessionID,
				IgnoredDomains: cfg.Browser.IgnoredDomains,
				Logger:         slog.Default(),
			})
			if err := w.Run(ctx, page, startURL); err != nil {
				return err
			}

			fmt.Printf("Session %s captured %d responses.\n", w.SessionID(), w.Captured())
			return nil
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "", "URL to open first (default: base_url from config)")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (default: UTC timestamp)")
	cmd.Flags().BoolVar(&headful, "headful", false, "show the browser window")

	return cmd
}
