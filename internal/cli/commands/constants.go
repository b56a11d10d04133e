package commands

import (
	"fmt"

	"github.com/leapstack-labs/portsql/internal/cli/output"
	"github.com/leapstack-labs/portsql/pkg/constants"
	"github.com/spf13/cobra"
)

// NewConstantsCommand creates the constants command and its subcommands.
func NewConstantsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "constants",
		Short: "Manage the named constants of the state database",
		Long: `Manage the named constants the [:get_constant] macro resolves when
no constants_file is configured. Constants are imported from a YAML file into
the state database.`,
	}
	cmd.AddCommand(newConstantsImportCommand(), newConstantsListCommand(), newConstantsDeleteCommand())
	return cmd
}

func newConstantsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import constants from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			t, err := constants.Load(args[0])
			if err != nil {
				return err
			}
			store, err := cmdCtx.OpenState(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.ImportConstants(cmd.Context(), t)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Printf("imported %d constants\n", n)
			return nil
		},
	}
}

func newConstantsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored constants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenState(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			t, err := store.Constants(cmd.Context())
			if err != nil {
				return err
			}
			codes := make([]constants.Code, 0, t.Len())
			for _, name := range t.Names() {
				c, err := t.Code(name)
				if err != nil {
					return err
				}
				codes = append(codes, c)
			}

			r := cmdCtx.Renderer
			if r.Mode() == output.ModeJSON {
				return r.JSON(codes)
			}
			rows := make([][]any, len(codes))
			for i, c := range codes {
				rows[i] = []any{c.Name, c.Value, c.Description}
			}
			r.Table([]string{"Name", "Value", "Description"}, rows)
			return nil
		},
	}
}

func newConstantsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored constant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenState(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ok, err := store.DeleteConstant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("constant %q not found", args[0])
			}
			cmdCtx.Renderer.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}
