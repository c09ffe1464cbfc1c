package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rostezkiy/spectre/miner"
)

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	var (
		generateConfig bool
		output         string
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Mine captured URLs into suggested resource definitions",
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

			analysis, err := miner.Analyze(cmd.Context(), s, limit, slog.Default())
			if err != nil {
				return err
			}
			if len(analysis.Resources) == 0 {
				fmt.Println("No captured URLs to analyze. Run `spectre watch` first.")
				return nil
			}

			for _, c := range analysis.Clusters {
				fmt.Printf("%-50s %d URLs\n", c.Pattern, len(c.URLs))
			}
			fmt.Println()
			for _, r := range analysis.Resources {
				pk := r.PrimaryKey
				if pk == "" {
					pk = "-"
				}
				fmt.Printf("%-20s %-40s pk=%s\n", r.Name, r.URLPattern, pk)
			}

			if !generateConfig {
				return nil
			}

			snippet, err := miner.GenerateConfig(analysis.Resources)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				fmt.Println()
				os.Stdout.Write(snippet)
				return nil
			}
			if err := os.WriteFile(output, snippet, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Printf("\nWrote %d resources to %s\n", len(analysis.Resources), output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&generateConfig, "generate-config", false, "emit a YAML resources snippet")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the snippet to a file instead of stdout")
	cmd.Flags().IntVar(&limit, "limit", 0, "max distinct URLs to mine (default 1000)")

	return cmd
}
