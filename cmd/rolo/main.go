package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/db"
	"github.com/hpungsan/rolo/internal/mcp"
	"github.com/hpungsan/rolo/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"create": true, "get": true, "update": true, "delete": true,
	"bookmark": true, "list": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// commandArg returns the first argument after any global --debug flag.
func commandArg() string {
	for _, arg := range os.Args[1:] {
		if arg == "--debug" {
			continue
		}
		return arg
	}
	return ""
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	arg := commandArg()
	if arg == "" {
		return false // No args → MCP server
	}
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	arg := commandArg()
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ____       _
  |  _ \ ___ | | ___
  | |_) / _ \| |/ _ \
  |  _ < (_) | | (_) |
  |_| \_\___/|_|\___/

  Local contact manager

  Usage: rolo <command> [options]
         rolo --help

  MCP server mode requires piped input.`)
}

// openStore opens the database under baseDir and loads the contact collection.
func openStore(ctx context.Context, baseDir string) (*store.Store, *config.Config, func(), error) {
	database, err := db.Init(baseDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closeDB := func() { database.Close() }

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithLocal(baseDir, cwd)
	if err != nil {
		closeDB()
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db.ConfigurePool(database, cfg)

	st, err := store.Open(ctx, db.KV{DB: database}, store.OptionsFromConfig(cfg))
	if err != nil {
		closeDB()
		return nil, nil, nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	return st, cfg, closeDB, nil
}

// warnUnknownDisabled logs config entries that match no tool or type.
func warnUnknownDisabled(cfg *config.Config) {
	for _, name := range mcp.ValidateDisabledTools(cfg.DisabledTools) {
		log.Warn().Str("tool", name).Msg("unknown tool in disabled_tools")
	}
	for _, name := range mcp.ValidateDisabledTypes(cfg.DisabledTypes) {
		log.Warn().Str("type", name).Msg("unknown type in disabled_types")
	}
}

func main() {
	initLog(debugFromEnv())

	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".rolo")

	st, cfg, closeDB, err := openStore(context.Background(), baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeDB()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(st, cfg)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			closeDB()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'rolo --help' for usage.\n")
		closeDB()
		os.Exit(1)
	}

	// MCP server mode (default)
	warnUnknownDisabled(cfg)
	if err := mcp.Run(st, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeDB()
		os.Exit(1)
	}
}
