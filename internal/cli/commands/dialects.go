package commands

import (
	"github.com/leapstack-labs/portsql/internal/cli/output"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/spf13/cobra"
)

type dialectJSON struct {
	Name        string   `json:"name"`
	ParamStyle  string   `json:"paramstyle"`
	Description string   `json:"description,omitempty"`
	Macros      []string `json:"macros"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the registered dialects",
		Long: `List every registered dialect with its paramstyle and the number of macro
operations it supports.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			var list []dialectJSON
			for _, name := range dialect.List() {
				d, _ := dialect.Get(name)
				list = append(list, dialectJSON{
					Name:        d.Name,
					ParamStyle:  d.Style().String(),
					Description: d.Description,
					Macros:      d.Macros().Names(),
				})
			}

			if r.Mode() == output.ModeJSON {
				return r.JSON(list)
			}
			rows := make([][]any, len(list))
			for i, d := range list {
				rows[i] = []any{d.Name, d.ParamStyle, len(d.Macros), d.Description}
			}
			r.Table([]string{"Dialect", "Paramstyle", "Macros", "Description"}, rows)
			return nil
		},
	}
}
