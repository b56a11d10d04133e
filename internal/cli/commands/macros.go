package commands

import (
	"github.com/leapstack-labs/portsql/internal/cli/output"
	"github.com/spf13/cobra"
)

type macroJSON struct {
	Name      string `json:"name"`
	Source    string `json:"source"`
	Signature string `json:"signature,omitempty"`
	Doc       string `json:"doc,omitempty"`
}

// NewMacrosCommand creates the macros command.
func NewMacrosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "macros",
		Short: "List the macro operations available to statements",
		Long: `List the macro operations of the dialect, including the site macros loaded
from the macros directory. Site macros show their Starlark signature and
docstring.`,
		Example: `  portsql macros
  portsql macros --dialect oracle -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			d, err := cmdCtx.Dialect("")
			if err != nil {
				return err
			}
			modules, err := cmdCtx.SiteMacros()
			if err != nil {
				return err
			}

			site := make(map[string]macroJSON)
			for _, m := range modules {
				for _, doc := range m.Docs {
					name := m.OpName(doc.Name)
					site[name] = macroJSON{Name: name, Source: m.Path, Signature: doc.Signature(), Doc: doc.Docstring}
				}
			}

			var list []macroJSON
			for _, name := range d.Macros().Names() {
				if m, ok := site[name]; ok {
					list = append(list, m)
					continue
				}
				list = append(list, macroJSON{Name: name, Source: "builtin"})
			}

			r := cmdCtx.Renderer
			if r.Mode() == output.ModeJSON {
				return r.JSON(list)
			}
			r.Printf("%s %s\n", r.Styles().Bold.Render("Dialect:"), d)
			rows := make([][]any, len(list))
			for i, m := range list {
				rows[i] = []any{m.Name, m.Source, m.Signature, m.Doc}
			}
			r.Table([]string{"Operation", "Source", "Signature", "Description"}, rows)
			return nil
		},
	}
}
