package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/portsql/internal/cli/output"
	"github.com/leapstack-labs/portsql/internal/state"
	"github.com/leapstack-labs/portsql/pkg/db"
	"github.com/leapstack-labs/portsql/pkg/lexer"
	"github.com/leapstack-labs/portsql/pkg/token"
	"github.com/spf13/cobra"
)

const (
	shellPrompt     = "portsql> "
	shellContinue   = "    ...> "
	historyFileName = "shell_history"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive portable SQL shell",
		Long: `Start an interactive shell connected to the configured target.

Statements are translated for the target's dialect before they run and may
span several lines; end them with a semicolon. Session bind values are set
with .param and used by every statement. Type .help for the dot commands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, NewCommandContext(cmd))
		},
	}
}

func runShell(cmd *cobra.Command, cmdCtx *CommandContext) error {
	ctx := cmd.Context()

	database, err := cmdCtx.OpenDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	sh := &shell{db: database, r: cmdCtx.Renderer, params: make(map[string]any)}

	historyFile := ""
	if cmdCtx.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), historyFileName)
		if store, err := cmdCtx.OpenState(ctx); err != nil {
			cmdCtx.Logger.Warn("statement history disabled", slog.String("error", err.Error()))
		} else {
			sh.store = store
			defer func() { _ = store.Close() }()
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sh.r.Printf("portsql shell (%s, dialect %s)\n", cmdCtx.Cfg.Target, database.Dialect())
	sh.r.Println("Type .help for commands, .quit to exit")
	sh.r.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			sh.buf.Reset()
			rl.SetPrompt(shellPrompt)
			continue
		}
		if err != nil {
			break
		}
		if sh.handleLine(ctx, line) {
			break
		}
		if sh.buf.Len() > 0 {
			rl.SetPrompt(shellContinue)
		} else {
			rl.SetPrompt(shellPrompt)
		}
	}
	return nil
}

// shell holds the state of an interactive session.
type shell struct {
	db     *db.Database
	r      *output.Renderer
	store  *state.Store // nil when history is not recorded
	params map[string]any
	buf    strings.Builder
}

// handleLine processes one input line. It reports whether the session
// should end.
func (s *shell) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(ctx, line)
	}

	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return false
	}
	text := s.buf.String()
	s.buf.Reset()

	s.run(ctx, text)
	s.r.Println()
	return false
}

// run translates and runs one statement and records it in the history.
func (s *shell) run(ctx context.Context, text string) {
	entry := &state.Entry{Dialect: s.db.Dialect().Name, Statement: text}
	defer s.record(ctx, entry)

	res, err := s.db.Translator().Translate(text, s.params)
	if err != nil {
		entry.Error = err.Error()
		s.r.Errorf("%v", err)
		return
	}
	entry.Translated = res.SQL

	if isQuery(text) {
		err = queryAndRender(ctx, s.r, s.db, text, s.params)
	} else {
		var affected int64
		affected, err = s.exec(ctx, text)
		if err == nil {
			s.r.Printf("%d rows affected\n", affected)
		}
	}
	if err != nil {
		entry.Error = err.Error()
		s.r.Errorf("%v", err)
	}
}

func (s *shell) exec(ctx context.Context, text string) (int64, error) {
	res, err := s.db.Execute(ctx, text, s.params)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *shell) record(ctx context.Context, e *state.Entry) {
	if s.store == nil {
		return
	}
	if err := s.store.RecordHistory(ctx, e); err != nil {
		s.r.Warnf("history: %v", err)
	}
}

func (s *shell) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(s.r.Writer())

	case ".dialect":
		s.r.Println(s.db.Dialect())

	case ".param":
		if len(parts) < 2 {
			s.r.Errorf("usage: .param name=value ...")
			break
		}
		values, err := parseParams(parts[1:])
		if err != nil {
			s.r.Errorf("%v", err)
			break
		}
		for k, v := range values {
			s.params[k] = v
		}

	case ".unset":
		for _, name := range parts[1:] {
			delete(s.params, strings.TrimPrefix(name, ":"))
		}

	case ".params":
		names := make([]string, 0, len(s.params))
		for name := range s.params {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]any, len(names))
		for i, name := range names {
			rows[i] = []any{name, s.params[name], typeName(s.params[name])}
		}
		s.r.Table([]string{"Name", "Value", "Type"}, rows)

	case ".translate":
		if rest == "" {
			s.r.Errorf("usage: .translate <sql>")
			break
		}
		res, err := s.db.Translator().Preview(rest, s.params)
		if err != nil {
			s.r.Errorf("%v", err)
			break
		}
		if err := renderTranslation(s.r, s.db.Dialect(), res); err != nil {
			s.r.Errorf("%v", err)
		}

	case ".macros":
		s.r.Println(strings.Join(s.db.Dialect().Macros().Names(), " "))

	case ".stats":
		st := s.db.Translator().Stats()
		s.r.Printf("cache: %d/%d entries, %d hits, %d misses, %d evictions\n",
			st.Size, st.MaxSize, st.Hits, st.Misses, st.Evictions)

	case ".history":
		s.history(ctx, parts[1:])

	case ".clear":
		s.r.Printf("\033[H\033[2J")

	default:
		s.r.Errorf("unknown command: %s (type .help for commands)", command)
	}
	return false
}

func (s *shell) history(ctx context.Context, args []string) {
	if s.store == nil {
		s.r.Errorf("history is not recorded for this session")
		return
	}
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			s.r.Errorf("usage: .history [count]")
			return
		}
		limit = n
	}
	entries, err := s.store.History(ctx, limit)
	if err != nil {
		s.r.Errorf("%v", err)
		return
	}
	rows := make([][]any, len(entries))
	for i, e := range entries {
		status := "ok"
		if e.Error != "" {
			status = e.Error
		}
		rows[i] = []any{e.ExecutedAt.Format("2006-01-02 15:04:05"), e.Dialect, strings.TrimSpace(e.Statement), status}
	}
	s.r.Table([]string{"Executed", "Dialect", "Statement", "Status"}, rows)
}

func (s *shell) completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range s.db.Dialect().Macros().Names() {
		items = append(items, readline.PcItem("[:"+name))
	}
	for _, c := range []string{".help", ".dialect", ".param", ".unset", ".params", ".translate", ".macros", ".stats", ".history", ".clear", ".quit", ".exit"} {
		items = append(items, readline.PcItem(c))
	}
	return readline.NewPrefixCompleter(items...)
}

// queryKeywords start statements that return rows.
var queryKeywords = map[string]bool{
	"SELECT": true, "WITH": true, "VALUES": true, "SHOW": true,
	"PRAGMA": true, "EXPLAIN": true, "DESCRIBE": true, "TABLE": true,
}

// isQuery reports whether the statement's first word starts a query.
func isQuery(text string) bool {
	for tok, err := range lexer.Tokens(text) {
		if err != nil {
			return false
		}
		switch tok.Kind {
		case token.OpenParen:
			continue
		case token.Word:
			return queryKeywords[strings.ToUpper(tok.Text)]
		default:
			return false
		}
	}
	return false
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help                 Show this help message
  .dialect              Show the dialect statements are translated to
  .param name=value     Set session bind values
  .unset name           Remove a session bind value
  .params               List session bind values
  .translate <sql>      Show the translation of a statement without running it
  .macros               List the available macro operations
  .stats                Show translation cache statistics
  .history [count]      Show recent statements
  .clear                Clear the screen
  .quit / .exit         Exit the shell

Tips:
  - Statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completes dot commands and [:macro names
`
	_, _ = fmt.Fprintln(w, help)
}
