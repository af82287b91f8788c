package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/mcncl/jsonsync/internal/analyzer"
	"github.com/mcncl/jsonsync/internal/differ"
	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/formatter"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/mcncl/jsonsync/internal/mutate"
	"github.com/mcncl/jsonsync/internal/parser"
	"github.com/mcncl/jsonsync/internal/session"
	"github.com/mcncl/jsonsync/internal/store"
)

// ReplCmd runs an interactive editing session over stdin
type ReplCmd struct {
	Load  string `help:"File to load into the JSON view on start." short:"l" type:"path"`
	Quiet bool   `help:"Do not print the prompt or the banner." short:"q"`
}

func (c *ReplCmd) Run(ctx *Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := newRepl(ctx, c.Quiet)

	if ctx.Config.Store.Enabled {
		st, err := store.Open(ctx.Config.Store.Path, ctx.Logger)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		r.store = st
		if err := r.restore(sigCtx); err != nil {
			return err
		}
	}

	if c.Load != "" {
		text, err := readFile(c.Load)
		if err != nil {
			return err
		}
		r.state = r.engine.Paste(r.state, text)
	}

	return r.loop(sigCtx, ctx.Stdin)
}

type replCommand struct {
	usage string
	help  string
	run   func(r *repl, ctx context.Context, args string) error
}

var replCommands map[string]replCommand

func init() {
	replCommands = map[string]replCommand{
		"help":     {"help", "List commands.", (*repl).cmdHelp},
		"json":     {"json TEXT", "Replace the JSON view with TEXT.", (*repl).cmdJSON},
		"string":   {"string TEXT", "Replace the escaped view with TEXT.", (*repl).cmdString},
		"paste":    {"paste", "Read lines until a lone '.' and paste them over the JSON view.", (*repl).cmdPaste},
		"load":     {"load FILE", "Paste the contents of FILE over the JSON view.", (*repl).cmdLoad},
		"fix":      {"fix", "Repair common mistakes in the JSON view.", (*repl).cmdFix},
		"format":   {"format", "Pretty-print the JSON view.", (*repl).cmdFormat},
		"minify":   {"minify", "Minify the JSON view.", (*repl).cmdMinify},
		"clear":    {"clear", "Empty both views.", (*repl).cmdClear},
		"delete":   {"delete PATH", "Delete the node at PATH.", (*repl).cmdDelete},
		"set":      {"set PATH JSON", "Set the node at PATH to a JSON value.", (*repl).cmdSet},
		"pack":     {"pack PATH", "Replace the node at PATH with its minified text.", (*repl).cmdPack},
		"unpack":   {"unpack PATH", "Parse the JSON string at PATH in place.", (*repl).cmdUnpack},
		"extract":  {"extract [TEXT]", "Pull the JSON fragment out of the escaped view, or out of TEXT.", (*repl).cmdExtract},
		"undo":     {"undo", "Go back one version.", (*repl).cmdUndo},
		"history":  {"history", "List the operation log, newest first.", (*repl).cmdHistory},
		"restore":  {"restore N|ID", "Restore the snapshot of a history entry.", (*repl).cmdRestore},
		"versions": {"versions", "List saved versions, oldest first.", (*repl).cmdVersions},
		"show":     {"show", "Print the JSON view.", (*repl).cmdShow},
		"escaped":  {"escaped", "Print the escaped view.", (*repl).cmdEscaped},
		"status":   {"status", "Print the sync status.", (*repl).cmdStatus},
		"type":     {"type [PATH]", "Describe the document or the node at PATH.", (*repl).cmdType},
		"diff":     {"diff", "Diff the newest version against the JSON view.", (*repl).cmdDiff},
		"save":     {"save", "Persist the session now.", (*repl).cmdSave},
		"sessions": {"sessions", "List persisted sessions.", (*repl).cmdSessions},
	}
}

type repl struct {
	engine *session.Engine
	differ *differ.Differ
	state  session.State
	store  *store.Store
	name   string
	quiet  bool
	out    io.Writer
	logger zerolog.Logger

	lines   <-chan string
	readErr error

	ok   *color.Color
	warn *color.Color
	add  *color.Color
	del  *color.Color
}

func newRepl(ctx *Context, quiet bool) *repl {
	r := &repl{
		engine: newEngine(ctx),
		differ: differ.NewDiffer(formatter.NewFormatterWithIndent(ctx.Config.Format.Indent)),
		state:  session.NewState(),
		name:   ctx.Config.Store.Session,
		quiet:  quiet,
		out:    ctx.Stdout,
		logger: ctx.Logger.With().Str("component", "Repl").Logger(),
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		add:    color.New(color.FgGreen),
		del:    color.New(color.FgRed),
	}

	// Colour only when writing straight to the terminal
	if f, ok := ctx.Stdout.(*os.File); !ok || f != os.Stdout {
		for _, c := range []*color.Color{r.ok, r.warn, r.add, r.del} {
			c.DisableColor()
		}
	}
	return r
}

func (r *repl) loop(ctx context.Context, in io.Reader) error {
	stop := r.readLines(in)
	defer stop()

	if !r.quiet {
		fmt.Fprintf(r.out, "jsonsync %s. Type 'help' for commands.\n", Version)
	}

	for {
		if ctx.Err() != nil {
			break
		}
		r.prompt()
		line, ok := r.nextLine(ctx)
		if !ok {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, args, _ := strings.Cut(line, " ")
		args = strings.TrimSpace(args)

		if name == "quit" || name == "exit" {
			break
		}
		cmd, ok := replCommands[name]
		if !ok {
			r.warn.Fprintf(r.out, "unknown command %q, try 'help'\n", name)
			continue
		}
		if err := cmd.run(r, ctx, args); err != nil {
			r.logger.Debug().Err(err).Str("command", name).Msg("Command failed")
			r.warn.Fprintln(r.out, errors.UserFriendlyError(err))
		}
	}

	if ctx.Err() != nil {
		r.logger.Debug().Msg("Session interrupted")
	} else if r.readErr != nil {
		return errors.NewInputError("failed to read session input", r.readErr)
	}
	return r.persist(context.WithoutCancel(ctx))
}

// readLines scans in on its own goroutine so that a blocked read never keeps
// the loop from seeing a cancelled context. The returned func releases the
// reader; the goroutine itself exits once in is closed.
func (r *repl) readLines(in io.Reader) func() {
	lines := make(chan string)
	done := make(chan struct{})
	r.lines = lines
	r.readErr = nil

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 64*1024), 16<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		// Written before lines is closed, read only after.
		r.readErr = sc.Err()
	}()

	return func() { close(done) }
}

// nextLine returns the next input line, or false once the input ends or ctx
// is cancelled.
func (r *repl) nextLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-r.lines:
		return line, ok
	}
}

func (r *repl) prompt() {
	if r.quiet {
		return
	}
	marker := ""
	if r.state.Status != models.StatusSynced {
		marker = "!"
	}
	fmt.Fprintf(r.out, "%s%s> ", r.name, marker)
}

// restore loads the persisted session, if any
func (r *repl) restore(ctx context.Context) error {
	snap, found, err := r.store.Load(ctx, r.name)
	if err != nil {
		return err
	}
	if !found {
		r.logger.Debug().Str("session", r.name).Msg("Starting new session")
		return nil
	}
	r.state = r.engine.JSONTextChanged(r.state, snap.JSONText)
	r.state.History = snap.History
	r.state.Versions = snap.Versions
	r.logger.Info().Str("session", r.name).Int("versions", len(snap.Versions)).Msg("Restored session")
	return nil
}

func (r *repl) persist(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.Save(ctx, store.Snapshot{
		Name:     r.name,
		JSONText: r.state.JSONText,
		History:  r.state.History,
		Versions: r.state.Versions,
	})
}

// apply installs the next state and reports the sync status
func (r *repl) apply(next session.State) {
	r.state = next
	r.printStatus()
}

func (r *repl) applyErr(next session.State, err error) error {
	if err != nil {
		return err
	}
	r.apply(next)
	return nil
}

func (r *repl) printStatus() {
	s := r.state
	switch s.Status {
	case models.StatusSynced:
		if !s.HasValue {
			r.ok.Fprintln(r.out, "ok (empty)")
			return
		}
		r.ok.Fprintf(r.out, "ok (%s, %d versions)\n", analyzer.TypeOf(s.Value), len(s.Versions))
	default:
		msg := "invalid"
		if s.Error != nil {
			msg = s.Error.Message
			if s.Error.HasPosition() {
				msg = fmt.Sprintf("%s at line %d, column %d", msg, s.Error.Line, s.Error.Col)
			}
		}
		r.warn.Fprintf(r.out, "%s: %s\n", s.Status, msg)
	}
}

func (r *repl) cmdHelp(_ context.Context, _ string) error {
	names := make([]string, 0, len(replCommands))
	for name := range replCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(r.out, "  %-16s %s\n", replCommands[name].usage, replCommands[name].help)
	}
	fmt.Fprintf(r.out, "  %-16s %s\n", "quit", "Save and leave the session.")
	return nil
}

func (r *repl) cmdJSON(_ context.Context, args string) error {
	r.apply(r.engine.JSONTextChanged(r.state, args))
	return nil
}

func (r *repl) cmdString(_ context.Context, args string) error {
	r.apply(r.engine.StringTextChanged(r.state, args))
	return nil
}

func (r *repl) cmdPaste(ctx context.Context, _ string) error {
	var lines []string
	for {
		line, ok := r.nextLine(ctx)
		if !ok {
			if ctx.Err() != nil {
				// Interrupted mid-paste, keep the current views.
				return nil
			}
			break
		}
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, line)
	}
	r.apply(r.engine.Paste(r.state, strings.Join(lines, "\n")))
	return nil
}

func (r *repl) cmdLoad(_ context.Context, args string) error {
	if args == "" {
		return errors.NewInputError("load needs a file name", errors.ErrNoInput)
	}
	text, err := readFile(args)
	if err != nil {
		return err
	}
	r.apply(r.engine.Paste(r.state, text))
	return nil
}

func (r *repl) cmdFix(_ context.Context, _ string) error {
	return r.applyErr(r.engine.SmartFix(r.state))
}

func (r *repl) cmdFormat(_ context.Context, _ string) error {
	return r.applyErr(r.engine.Format(r.state))
}

func (r *repl) cmdMinify(_ context.Context, _ string) error {
	return r.applyErr(r.engine.Minify(r.state))
}

func (r *repl) cmdClear(_ context.Context, _ string) error {
	r.apply(r.engine.Clear(r.state))
	return nil
}

func (r *repl) cmdDelete(_ context.Context, args string) error {
	path, err := mutate.ParsePath(args)
	if err != nil {
		return err
	}
	return r.applyErr(r.engine.Edit(r.state, path, mutate.ActionDelete, models.Value{}))
}

func (r *repl) cmdSet(_ context.Context, args string) error {
	rawPath, rawValue, found := strings.Cut(args, " ")
	if !found {
		return errors.NewInputError("set needs a path and a value", errors.ErrEmptyInput)
	}
	path, err := mutate.ParsePath(rawPath)
	if err != nil {
		return err
	}
	value, err := parser.ParseString(rawValue)
	if err != nil {
		return err
	}
	return r.applyErr(r.engine.Edit(r.state, path, mutate.ActionUpdate, value))
}

func (r *repl) cmdPack(_ context.Context, args string) error {
	path, err := mutate.ParsePath(args)
	if err != nil {
		return err
	}
	return r.applyErr(r.engine.Pack(r.state, path))
}

func (r *repl) cmdUnpack(_ context.Context, args string) error {
	path, err := mutate.ParsePath(args)
	if err != nil {
		return err
	}
	return r.applyErr(r.engine.Unpack(r.state, path))
}

func (r *repl) cmdExtract(_ context.Context, args string) error {
	s := r.state
	if args != "" {
		s.StringText = args
	}
	return r.applyErr(r.engine.Extract(s))
}

func (r *repl) cmdUndo(_ context.Context, _ string) error {
	if !r.state.CanUndo() {
		fmt.Fprintln(r.out, "nothing to undo")
		return nil
	}
	r.apply(r.engine.Undo(r.state))
	return nil
}

func (r *repl) cmdHistory(_ context.Context, _ string) error {
	if len(r.state.History) == 0 {
		fmt.Fprintln(r.out, "no history")
		return nil
	}
	for i, entry := range r.state.History {
		fmt.Fprintf(r.out, "%2d  %s  %-22s %s\n", i+1, entry.Timestamp.Format("15:04:05"), entry.Action, entry.Preview)
	}
	return nil
}

// cmdRestore accepts a 1-based position in the history listing or an entry id
func (r *repl) cmdRestore(_ context.Context, args string) error {
	id := args
	if n, err := strconv.Atoi(args); err == nil && n >= 1 && n <= len(r.state.History) {
		id = r.state.History[n-1].ID
	}
	return r.applyErr(r.engine.RestoreHistory(r.state, id))
}

func (r *repl) cmdVersions(_ context.Context, _ string) error {
	if len(r.state.Versions) == 0 {
		fmt.Fprintln(r.out, "no versions")
		return nil
	}
	for i, v := range r.state.Versions {
		current := " "
		if v.Content == r.state.JSONText {
			current = "*"
		}
		fmt.Fprintf(r.out, "%s%2d  %s  %d bytes\n", current, i+1, v.Timestamp.Format("15:04:05"), len(v.Content))
	}
	return nil
}

func (r *repl) cmdShow(_ context.Context, _ string) error {
	fmt.Fprintln(r.out, r.state.JSONText)
	return nil
}

func (r *repl) cmdEscaped(_ context.Context, _ string) error {
	fmt.Fprintln(r.out, r.state.StringText)
	return nil
}

func (r *repl) cmdStatus(_ context.Context, _ string) error {
	r.printStatus()
	if r.state.CanUndo() {
		fmt.Fprintln(r.out, "undo available")
	}
	return nil
}

func (r *repl) cmdType(_ context.Context, args string) error {
	value, ok := r.state.Document()
	if !ok {
		return errors.NewStateError("nothing to describe", errors.ErrNoDocument)
	}
	if args != "" {
		path, err := mutate.ParsePath(args)
		if err != nil {
			return err
		}
		if value, err = mutate.Get(value, path); err != nil {
			return err
		}
	}
	fmt.Fprint(r.out, renderSummary(analyzer.NewAnalyzer().Analyze(value)))
	return nil
}

func (r *repl) cmdDiff(_ context.Context, _ string) error {
	if len(r.state.Versions) == 0 {
		return errors.NewStateError("no versions recorded", errors.ErrNothingToUndo)
	}
	result := r.differ.Diff(r.state.Versions[len(r.state.Versions)-1].Content, r.state.JSONText)
	if result.Identical {
		fmt.Fprintln(r.out, "no differences")
		return nil
	}
	for _, chunk := range result.Chunks {
		for _, line := range strings.SplitAfter(chunk.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch chunk.Op {
			case differ.OpInsert:
				r.add.Fprintln(r.out, "+ "+line)
			case differ.OpDelete:
				r.del.Fprintln(r.out, "- "+line)
			default:
				fmt.Fprintln(r.out, "  "+line)
			}
		}
	}
	return nil
}

func (r *repl) cmdSave(ctx context.Context, _ string) error {
	if r.store == nil {
		return errors.NewStateError("persistence is off, start with --store", nil)
	}
	if err := r.persist(ctx); err != nil {
		return err
	}
	r.ok.Fprintf(r.out, "saved session %q\n", r.name)
	return nil
}

func (r *repl) cmdSessions(ctx context.Context, _ string) error {
	if r.store == nil {
		return errors.NewStateError("persistence is off, start with --store", nil)
	}
	names, err := r.store.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(r.out, name)
	}
	return nil
}
