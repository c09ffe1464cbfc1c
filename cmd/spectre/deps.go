package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Rostezkiy/spectre/config"
	"github.com/Rostezkiy/spectre/dbopen"
	"github.com/Rostezkiy/spectre/store"
)

// loadConfig resolves and loads the configuration, applying the --db
// override on top.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(config.Locate(flags.configPath))
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DatabasePath = flags.dbPath
	}
	return cfg, nil
}

// openStore opens the database with the schema applied and wraps it in
// a Store. The caller closes the returned *sql.DB.
func openStore(cfg *config.Config) (*store.Store, *sql.DB, error) {
	db, err := dbopen.Open(cfg.DatabasePath,
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(store.Schema),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.DatabasePath, err)
	}
	slog.Debug("database opened", "path", cfg.DatabasePath)
	return store.NewStore(db), db, nil
}
