// Package config loads the application configuration. Settings come from a
// YAML file plus STRINGFINDER_* environment overrides and are returned as an
// explicit Config value; engine packages receive configuration through their
// constructors and never consult viper themselves.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the search engine and its host process.
type Config struct {
	// CorpusRoot is the directory tree scanned by file searches.
	CorpusRoot string `mapstructure:"corpus_root"`
	// CorpusDB is the SQLite database scanned by database searches.
	CorpusDB string `mapstructure:"corpus_db"`

	// TimeBudget bounds one processBatch call.
	TimeBudget time.Duration `mapstructure:"time_budget"`
	// MemoryLimit is the batch memory ceiling in bytes; 0 means unlimited.
	MemoryLimit uint64 `mapstructure:"memory_limit"`
	// Retention is the session/result retention window.
	Retention time.Duration `mapstructure:"retention"`

	// UnitPageSize is the number of units stored per unit-list page.
	UnitPageSize int `mapstructure:"unit_page_size"`
	// RowPageSize caps rows inspected per table per batch.
	RowPageSize int `mapstructure:"row_page_size"`
	// MaxResultsPerBatch caps match records emitted by one batch.
	MaxResultsPerBatch int `mapstructure:"max_results_per_batch"`
	// MaxMatchesPerColumn caps records kept per scanned column of one row.
	MaxMatchesPerColumn int `mapstructure:"max_matches_per_column"`
	// MaxCellBytes is the cell-size ceiling; larger values are skipped.
	MaxCellBytes int64 `mapstructure:"max_cell_bytes"`
	// MaxFileBytes is the file-size ceiling; larger files are skipped.
	MaxFileBytes int64 `mapstructure:"max_file_bytes"`
}

// Defaults returns the configuration used when no file or overrides exist.
func Defaults() Config {
	return Config{
		TimeBudget:          25 * time.Second,
		MemoryLimit:         0,
		Retention:           time.Hour,
		UnitPageSize:        500,
		RowPageSize:         100,
		MaxResultsPerBatch:  500,
		MaxMatchesPerColumn: 25,
		MaxCellBytes:        1 << 20,
		MaxFileBytes:        2 << 20,
	}
}

// Load reads configuration from cfgFile, or from the default lookup paths
// when cfgFile is empty, applies environment overrides and returns the
// merged result. A missing config file is not an error; defaults apply.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("corpus_root", d.CorpusRoot)
	v.SetDefault("corpus_db", d.CorpusDB)
	v.SetDefault("time_budget", d.TimeBudget)
	v.SetDefault("memory_limit", d.MemoryLimit)
	v.SetDefault("retention", d.Retention)
	v.SetDefault("unit_page_size", d.UnitPageSize)
	v.SetDefault("row_page_size", d.RowPageSize)
	v.SetDefault("max_results_per_batch", d.MaxResultsPerBatch)
	v.SetDefault("max_matches_per_column", d.MaxMatchesPerColumn)
	v.SetDefault("max_cell_bytes", d.MaxCellBytes)
	v.SetDefault("max_file_bytes", d.MaxFileBytes)

	v.SetEnvPrefix("STRINGFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(".")
		if home != "" {
			v.AddConfigPath(filepath.Join(home, ".config", "stringfinder"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
