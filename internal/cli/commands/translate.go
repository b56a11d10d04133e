package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/portsql/internal/cli/output"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/translate"
	"github.com/spf13/cobra"
)

// TranslateOptions holds options for the translate command.
type TranslateOptions struct {
	Params     []string
	ParamsFile string
	Input      string
	All        bool
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	opts := &TranslateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [SQL]",
		Short: "Translate portable SQL for a dialect",
		Long: `Translate a portable SQL statement into the SQL text and bound values the
target's driver expects.

Macros such as [:table name=users] are expanded for the dialect and :name
placeholders are rewritten in its paramstyle. Placeholders without a value
are bound as null and reported as unbound. The dialect defaults to the
configured target's; use --dialect to pick another, or --all to compare
every registered dialect.`,
		Example: `  # Translate for the configured target
  portsql translate "SELECT * FROM [:table schema=app name=users] WHERE id = :id" -p id=7

  # Translate for Oracle
  portsql translate --dialect oracle "SELECT [:now] [:from_dual]"

  # Compare all dialects, as JSON
  portsql translate --all -o json "SELECT [:sequence name=ids op=next] [:from_dual]"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "Bind value as name=value (repeatable)")
	cmd.Flags().StringVar(&opts.ParamsFile, "params-file", "", "YAML file with bind values")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Translate for every registered dialect")

	return cmd
}

// translation is the JSON form of one translated statement.
type translation struct {
	Dialect    string   `json:"dialect"`
	ParamStyle string   `json:"paramstyle"`
	SQL        string   `json:"sql,omitempty"`
	Names      []string `json:"names,omitempty"`
	Binds      any      `json:"binds,omitempty"`
	Unbound    []string `json:"unbound,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func runTranslate(cmd *cobra.Command, args []string, opts *TranslateOptions) error {
	cmdCtx := NewCommandContext(cmd)
	text, err := readSQL(cmd, args, opts.Input)
	if err != nil {
		return err
	}
	sets, err := paramSets(opts.ParamsFile, opts.Params)
	if err != nil {
		return err
	}
	values := sets[0]

	if !opts.All {
		tr, err := cmdCtx.Translator(cmd.Context(), "")
		if err != nil {
			return err
		}
		res, err := tr.Preview(text, values)
		if err != nil {
			return err
		}
		return renderTranslation(cmdCtx.Renderer, tr.Dialect(), res)
	}

	var results []translation
	for _, name := range dialect.List() {
		tr, err := cmdCtx.Translator(cmd.Context(), name)
		if err != nil {
			return err
		}
		t := translation{Dialect: name, ParamStyle: tr.Dialect().Style().String()}
		if res, err := tr.Preview(text, values); err != nil {
			t.Error = err.Error()
		} else {
			t.SQL, t.Names, t.Binds, t.Unbound = res.SQL, res.Names, res.Bound.Value(), res.Unbound
		}
		results = append(results, t)
	}
	return renderTranslations(cmdCtx.Renderer, results)
}

func renderTranslation(r *output.Renderer, d *dialect.Dialect, res *translate.Result) error {
	switch r.Mode() {
	case output.ModeJSON:
		return r.JSON(translation{
			Dialect:    d.Name,
			ParamStyle: d.Style().String(),
			SQL:        res.SQL,
			Names:      res.Names,
			Binds:      res.Bound.Value(),
			Unbound:    res.Unbound,
		})
	case output.ModePlain:
		r.Println(res.SQL)
		return nil
	}

	styles := r.Styles()
	r.Printf("%s %s\n", styles.Bold.Render("Dialect:"), d)
	r.Printf("%s %s\n", styles.Bold.Render("SQL:"), res.SQL)
	if rows := bindRows(res); len(rows) > 0 {
		r.Table([]string{"Bind", "Value", "Type"}, rows)
	}
	if len(res.Unbound) > 0 {
		r.Printf("%s %s\n", styles.Warning.Render("Unbound:"), strings.Join(res.Unbound, ", "))
	}
	return nil
}

func renderTranslations(r *output.Renderer, results []translation) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(results)
	}
	rows := make([][]any, 0, len(results))
	for _, t := range results {
		sql := t.SQL
		if t.Error != "" {
			sql = r.Styles().Error.Render(t.Error)
		}
		rows = append(rows, []any{t.Dialect, t.ParamStyle, sql})
	}
	r.Table([]string{"Dialect", "Paramstyle", "SQL"}, rows)
	return nil
}

// bindRows lists the bound values: by name for keyed styles, by position
// otherwise.
func bindRows(res *translate.Result) [][]any {
	var rows [][]any
	if res.Bound.Named != nil {
		for _, name := range res.Names {
			v := res.Bound.Named[name]
			rows = append(rows, []any{name, v, typeName(v)})
		}
		return rows
	}
	for i, v := range res.Bound.Positional {
		rows = append(rows, []any{fmt.Sprintf("#%d", i+1), v, typeName(v)})
	}
	return rows
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
