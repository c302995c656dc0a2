package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/KaramelBytes/sheetql-cli/internal/bridge"
	cfgpkg "github.com/KaramelBytes/sheetql-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	// Engine flags (override config if set)
	flagDBPath  string
	flagTempDir string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "sheetql",
	Short: "sheetql: query and update spreadsheets with SQL",
	Long: `sheetql loads the sheets of an XLSX or CSV document into an embedded SQLite
database, runs SQL against them and writes query results back as sheets.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sheetql/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "keep the SQLite database in this file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagTempDir, "temp-dir", "", "directory for the temporary database (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{PreviewLimit: bridge.DefaultPreviewLimit, OutputFormat: "table", Backup: true}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("db") {
		cfg.DBPath = flagDBPath
	}
	if f.Changed("temp-dir") {
		cfg.TempDir = flagTempDir
	}
	logger = newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat, debug)
}

// newLogger builds the CLI logger. --debug wins over the configured level.
func newLogger(w io.Writer, level, format string, debug bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	if debug {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// bridgeOptions maps the effective configuration onto bridge options.
func bridgeOptions() bridge.Options {
	opt := bridge.Options{Logger: logger}
	if cfg != nil {
		opt.DBPath = cfg.DBPath
		opt.TempDir = cfg.TempDir
	}
	return opt
}
