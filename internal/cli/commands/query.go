package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/portsql/internal/cli/output"
	"github.com/leapstack-labs/portsql/pkg/db"
	"github.com/spf13/cobra"
)

// QueryOptions holds options shared by the query and exec commands.
type QueryOptions struct {
	Params     []string
	ParamsFile string
	Input      string
}

func (o *QueryOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&o.Params, "param", "p", nil, "Bind value as name=value (repeatable)")
	cmd.Flags().StringVar(&o.ParamsFile, "params-file", "", "YAML file with bind values (a list runs the statement once per entry)")
	cmd.Flags().StringVarP(&o.Input, "input", "i", "", "Read SQL from file")
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a query against the target and show the rows",
		Long: `Translate a portable SQL query for the configured target, run it and render
the result rows.

When invoked without SQL on a terminal, starts the interactive shell.`,
		Example: `  portsql query "SELECT * FROM [:table name=users] WHERE id = :id" -p id=7
  portsql query -o json "SELECT [:now] AS ts [:from_dual]"
  portsql query --input report.sql --params-file params.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	text, err := readSQL(cmd, args, opts.Input)
	if errors.Is(err, errNoSQL) && isTerminal(os.Stdin) {
		return runShell(cmd, cmdCtx)
	}
	if err != nil {
		return err
	}
	sets, err := paramSets(opts.ParamsFile, opts.Params)
	if err != nil {
		return err
	}
	if len(sets) > 1 {
		return fmt.Errorf("query takes one set of bind values, got %d", len(sets))
	}

	database, err := cmdCtx.OpenDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	return queryAndRender(cmd.Context(), cmdCtx.Renderer, database, text, sets[0])
}

func queryAndRender(ctx context.Context, r *output.Renderer, database *db.Database, text string, values map[string]any) error {
	rows, err := database.Query(ctx, text, values)
	if err != nil {
		return err
	}
	return renderRows(r, rows)
}

func renderRows(r *output.Renderer, rows []db.Row) error {
	if r.Mode() == output.ModeJSON {
		out := make([]map[string]any, len(rows))
		for i, row := range rows {
			m := row.Map()
			for k, v := range m {
				if b, ok := v.([]byte); ok {
					m[k] = string(b)
				}
			}
			out[i] = m
		}
		return r.JSON(out)
	}

	if len(rows) == 0 {
		if r.Mode() == output.ModeTable {
			r.Println("(0 rows)")
		}
		return nil
	}

	data := make([][]any, len(rows))
	for i, row := range rows {
		data[i] = row.Values
	}
	r.Table(rows[0].Columns, data)
	if r.Mode() == output.ModeTable {
		r.Printf("(%d rows)\n", len(rows))
	}
	return nil
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Execute a statement against the target",
		Long: `Translate a portable SQL statement for the configured target and execute it.

With a --params-file holding a list of bind value sets the statement is
prepared once and run for every set inside one transaction.`,
		Example: `  portsql exec "DELETE FROM [:table name=sessions] WHERE expires_at < [:now]"
  portsql exec "INSERT INTO users (id, name) VALUES (:id, :name)" --params-file users.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runExec(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	text, err := readSQL(cmd, args, opts.Input)
	if err != nil {
		return err
	}
	sets, err := paramSets(opts.ParamsFile, opts.Params)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := cmdCtx.OpenDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	var affected int64
	if len(sets) > 1 {
		affected, err = database.Cursor().ExecMany(ctx, text, sets)
		if err != nil {
			return err
		}
	} else {
		res, err := database.Execute(ctx, text, sets[0])
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
	}

	r := cmdCtx.Renderer
	if r.Mode() == output.ModeJSON {
		return r.JSON(map[string]any{"rows_affected": affected, "statements": len(sets)})
	}
	r.Printf("%d rows affected\n", affected)
	return nil
}

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the target is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			database, err := cmdCtx.OpenDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := database.Ping(cmd.Context()); err != nil {
				return err
			}
			cmdCtx.Renderer.Printf("%s %s (%s)\n",
				cmdCtx.Renderer.Styles().Success.Render("ok"), cmdCtx.Cfg.Target, database.Dialect())
			return nil
		},
	}
}
