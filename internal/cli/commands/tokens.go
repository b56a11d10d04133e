package commands

import (
	"github.com/leapstack-labs/portsql/internal/cli/output"
	"github.com/leapstack-labs/portsql/pkg/lexer"
	"github.com/leapstack-labs/portsql/pkg/token"
	"github.com/spf13/cobra"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "tokens [SQL]",
		Short: "Show how a statement is tokenized",
		Long: `Tokenize a portable SQL statement and list its tokens with their kind and
position. Useful for checking how macros and bind parameters are recognised.`,
		Example: `  portsql tokens "SELECT * FROM [:table name=users] WHERE id = :id"
  echo "SELECT 'it''s'" | portsql tokens -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			text, err := readSQL(cmd, args, input)
			if err != nil {
				return err
			}
			toks, err := lexer.Tokenize(text)
			if err != nil {
				return err
			}
			return renderTokens(cmdCtx.Renderer, toks)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Read SQL from file")
	return cmd
}

type tokenJSON struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Spaced bool   `json:"spaced,omitempty"`
}

func renderTokens(r *output.Renderer, toks []token.Token) error {
	if r.Mode() == output.ModeJSON {
		out := make([]tokenJSON, len(toks))
		for i, t := range toks {
			out[i] = tokenJSON{Kind: t.Kind.String(), Text: t.Text, Line: t.Pos.Line, Column: t.Pos.Column, Spaced: t.Spaced}
		}
		return r.JSON(out)
	}

	styles := r.Styles()
	rows := make([][]any, len(toks))
	for i, t := range toks {
		kind := t.Kind.String()
		if r.Mode() == output.ModeTable {
			kind = styles.ForToken(t.Kind).Render(kind)
		}
		rows[i] = []any{i + 1, kind, t.Text, t.Pos.String()}
	}
	r.Table([]string{"#", "Kind", "Text", "Position"}, rows)
	return nil
}
