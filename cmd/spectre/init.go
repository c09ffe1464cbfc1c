package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rostezkiy/spectre/config"
)

const starterConfig = `# spectre project configuration
project: my-project
# base_url: https://example.com

database_path: ./data/spectre.db

server:
  addr: ":8080"

browser:
  headless: true

retention:
  days: 30

# Resources are usually mined with: spectre analyze --generate-config
resources: []
`

func newInitCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter spectre.yaml in the working directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Locate(flags.configPath)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	return cmd
}
