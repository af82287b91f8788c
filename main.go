package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/mcncl/jsonsync/internal/config"
	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/logger"
	"github.com/mcncl/jsonsync/internal/session"
	"github.com/mcncl/jsonsync/internal/versions"
)

// CLI defines the command-line interface
var CLI struct {
	Input     string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output    string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Config    string `help:"Path to config file. Defaults to the nearest .jsonsync.yml." short:"c" type:"path"`
	Indent    string `help:"Indentation for formatted JSON (spaces or tabs)."`
	Debug     bool   `help:"Enable debug logging." short:"d"`
	LogFile   string `help:"Also write logs to this file, rotated by size." type:"path"`
	Store     bool   `help:"Persist session history and versions in SQLite."`
	StorePath string `help:"Path of the session database." type:"path"`
	Session   string `help:"Name of the persisted session." short:"s"`

	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Fix      FixCmd      `cmd:"" help:"Repair common JSON mistakes and print the result."`
	Format   FormatCmd   `cmd:"" help:"Pretty-print JSON."`
	Minify   MinifyCmd   `cmd:"" help:"Print JSON without insignificant whitespace."`
	Escape   EscapeCmd   `cmd:"" help:"Print JSON as an escaped string."`
	Unescape UnescapeCmd `cmd:"" help:"Decode an escaped string back into JSON."`
	Extract  ExtractCmd  `cmd:"" help:"Find the JSON fragment inside noisy or escaped text."`
	Type     TypeCmd     `cmd:"" aliases:"inspect" help:"Describe the type and shape of a document or one of its nodes."`
	Edit     EditCmd     `cmd:"" help:"Apply a structural edit to a document."`
	Major    MajorCmd    `cmd:"" help:"Report whether the change between two files is major."`
	Diff     DiffCmd     `cmd:"" help:"Show the line diff between two documents."`
	Repl     ReplCmd     `cmd:"" name:"session" default:"1" help:"Interactive editing session (default)."`
	Ver      VersionCmd  `cmd:"" name:"version" help:"Show version information."`
}

// Context holds the runtime context shared by every command
type Context struct {
	Config *config.Config
	Logger zerolog.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("jsonsync"),
		kong.Description("Keep JSON and its escaped-string form in sync, repair and edit it"),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("jsonsync version %s", Version)},
	)

	// Parse the command line arguments
	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	ctx, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if err := kctx.Run(ctx); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))

		// Show help on error
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonsync --help\n")

		os.Exit(1)
	}
}

// newContext loads configuration and builds the logger
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.CLIOverrides{
		Indent:      CLI.Indent,
		LogFile:     CLI.LogFile,
		StorePath:   CLI.StorePath,
		Session:     CLI.Session,
		EnableStore: CLI.Store,
	}
	if CLI.Debug {
		overrides.LogLevel = "debug"
	}

	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerBuilder().WithConfig(cfg.Log).Build()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		log.Debug().Str("path", configPath).Msg("Loaded configuration")
	}

	return &Context{
		Config: cfg,
		Logger: log,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// newEngine maps the configuration onto the session engine
func newEngine(ctx *Context) *session.Engine {
	cfg := ctx.Config
	return session.NewEngine(session.Options{
		Indent:             cfg.Format.Indent,
		HistoryMaxEntries:  cfg.History.MaxEntries,
		HistoryPreviewSize: cfg.History.PreviewLength,
		Versions: versions.Policy{
			MaxEntries:       cfg.Versions.MaxEntries,
			MajorChangeRatio: cfg.Versions.MajorChangeRatio,
		},
		MaxInputBytes: cfg.Extract.MaxInputBytes,
	}, ctx.Logger)
}

// readInput reads the document from the input file or stdin
func readInput(ctx *Context) (string, error) {
	if CLI.Input != "" {
		return readFile(CLI.Input)
	}

	// Refuse to block on an interactive terminal
	if f, ok := ctx.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return "", errors.NewInputError("failed to access stdin", err)
		}
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			return "", errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	// Read from stdin (piped input)
	data, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return string(data), nil
}

// readFile reads a whole file, mapping a missing file to ErrFileNotFound
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewInputError(fmt.Sprintf("file '%s' does not exist", path), errors.ErrFileNotFound)
		}
		return "", errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
	}
	return string(data), nil
}

// writeOutput writes text to the output file or stdout
func writeOutput(ctx *Context, text string) error {
	if CLI.Output != "" {
		// Write to file
		err := os.WriteFile(CLI.Output, []byte(text+"\n"), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(ctx.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	// Write to stdout
	_, err := fmt.Fprintln(ctx.Stdout, strings.TrimRight(text, "\n"))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
