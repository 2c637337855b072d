package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/otw-tahir/otw-string-finder/internal/config"
	"github.com/otw-tahir/otw-string-finder/internal/dbscan"
	"github.com/otw-tahir/otw-string-finder/internal/filescan"
	"github.com/otw-tahir/otw-string-finder/internal/mcp"
	"github.com/otw-tahir/otw-string-finder/internal/session"
	"github.com/otw-tahir/otw-string-finder/internal/store"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	cfgFile    string
	corpusRoot string
	corpusDB   string
)

func main() {
	root := &cobra.Command{
		Use:   "stringfinder",
		Short: "Resumable batch search over a file tree and a SQLite corpus, served over MCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml, ~/.config/stringfinder/config.yaml)")
	root.PersistentFlags().StringVar(&corpusRoot, "corpus-root", "", "file corpus root directory (overrides config)")
	root.PersistentFlags().StringVar(&corpusDB, "corpus-db", "", "corpus SQLite database path (overrides config)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stringfinder MCP server\n")
			fmt.Printf("Version: %s\n", version)
			fmt.Printf("Build Time: %s\n", buildTime)
			fmt.Printf("Build Mode: %s\n", dbscan.BuildMode)
			fmt.Printf("SQLite Driver: %s\n", dbscan.DriverName)
		},
	})

	if err := root.Execute(); err != nil {
		log.Fatalf("stringfinder: %v", err)
	}
}

func run(ctx context.Context) error {
	// Log to stderr; stdout is reserved for the MCP protocol.
	log.SetOutput(os.Stderr)
	log.Printf("stringfinder MCP server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", dbscan.BuildMode, dbscan.DriverName)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if corpusRoot != "" {
		cfg.CorpusRoot = corpusRoot
	}
	if corpusDB != "" {
		cfg.CorpusDB = corpusDB
	}
	if cfg.CorpusRoot == "" && cfg.CorpusDB == "" {
		return fmt.Errorf("nothing to search: set --corpus-root and/or --corpus-db")
	}

	var files *filescan.Enumerator
	if cfg.CorpusRoot != "" {
		info, err := os.Stat(cfg.CorpusRoot)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("corpus root is not a directory: %s", cfg.CorpusRoot)
		}
		files = filescan.NewEnumerator(cfg.CorpusRoot, cfg.MaxFileBytes)
		log.Printf("File corpus: %s", cfg.CorpusRoot)
	}

	manager, cleanup, err := buildManager(cfg, files)
	if err != nil {
		return err
	}
	defer cleanup()

	server := mcp.NewServer(manager)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Println("MCP server ready, listening on stdio...")
		return server.Serve(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	log.Println("Server stopped")
	return nil
}

func buildManager(cfg config.Config, files *filescan.Enumerator) (*session.Manager, func(), error) {
	cleanup := func() {}

	sessCfg := session.Config{
		TimeBudget:          cfg.TimeBudget,
		MemoryLimit:         cfg.MemoryLimit,
		UnitPageSize:        cfg.UnitPageSize,
		RowPageSize:         cfg.RowPageSize,
		MaxResultsPerBatch:  cfg.MaxResultsPerBatch,
		MaxMatchesPerColumn: cfg.MaxMatchesPerColumn,
		MaxCellBytes:        cfg.MaxCellBytes,
	}

	if cfg.CorpusDB == "" {
		return session.NewManager(sessCfg, store.NewMemory(cfg.Retention), files, nil), cleanup, nil
	}

	db, err := dbscan.Open(cfg.CorpusDB)
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() { _ = db.Close() }
	log.Printf("Corpus database: %s", cfg.CorpusDB)
	return session.NewManager(sessCfg, store.NewMemory(cfg.Retention), files, db), cleanup, nil
}
