package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newCleanCmd(flags *rootFlags) *cobra.Command {
	var (
		olderThan int
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete old captures and their orphaned bodies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			days := olderThan
			if !cmd.Flags().Changed("older-than") && cfg.Retention.Days > 0 {
				days = cfg.Retention.Days
			}
			if days < 0 {
				return fmt.Errorf("--older-than must be >= 0")
			}

			if !yes {
				fmt.Printf("Delete all captures older than %d days? [y/N] ", days)
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			s, db, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			deleted, err := s.DeleteOlderThan(cmd.Context(), days)
			if err != nil {
				return err
			}
			slog.Info("cleanup finished", "deleted", deleted, "older_than_days", days)
			fmt.Printf("Deleted %d captures.\n", deleted)
			return nil
		},
	}

	cmd.Flags().IntVar(&olderThan, "older-than", 30, "age threshold in days (0 = everything)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
