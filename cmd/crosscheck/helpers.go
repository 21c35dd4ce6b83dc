package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"crosscheck/internal/catalog"
	"crosscheck/internal/config"
	"crosscheck/internal/parser"
	"crosscheck/internal/score"
	"crosscheck/internal/storage"
)

// initStorage opens the change-history store and applies migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/crosscheck/history.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadCatalog loads the ownership catalog configured via flag or config
// file.
func loadCatalog() (*catalog.Snapshot, error) {
	path := viper.GetString("catalog.path")
	if path == "" {
		return nil, fmt.Errorf("no catalog configured: set catalog.path or pass --catalog")
	}

	return catalog.Load(config.ExpandPath(path))
}

// scoringWeights reads the factor weights from config, falling back to
// equal thirds.
func scoringWeights() score.Weights {
	if !viper.IsSet("scoring.weights.overlap") &&
		!viper.IsSet("scoring.weights.criticality") &&
		!viper.IsSet("scoring.weights.ambiguity") {
		return score.DefaultWeights()
	}

	return score.Weights{
		Overlap:     viper.GetFloat64("scoring.weights.overlap"),
		Criticality: viper.GetFloat64("scoring.weights.criticality"),
		Ambiguity:   viper.GetFloat64("scoring.weights.ambiguity"),
	}
}

// readObjects parses an object list from a file (format by extension) or
// from stdin as pasted text when path is empty.
func readObjects(path string) (parser.Result, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return parser.Result{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return parser.ParseObjectText(string(data)), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided input file
	if err != nil {
		return parser.Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parser.ParseCSV(strings.NewReader(string(data)))
	case ".json":
		return parser.ParseJSON(data)
	default:
		return parser.ParseObjectText(string(data)), nil
	}
}
