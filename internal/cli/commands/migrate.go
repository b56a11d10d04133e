package commands

import (
	"github.com/leapstack-labs/portsql/internal/cli/output"
	"github.com/leapstack-labs/portsql/internal/state"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command and its subcommands.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the state database schema",
		Long: `Manage the schema of the state database, which holds imported constants and
the statement history of the shell. Commands that use the state database
migrate it automatically.`,
	}
	cmd.AddCommand(newMigrateUpCommand(), newMigrateDownCommand(), newMigrateStatusCommand())
	return cmd
}

func openStateRaw(cmd *cobra.Command) (*CommandContext, *state.Store, error) {
	cmdCtx := NewCommandContext(cmd)
	store, err := state.Open(cmd.Context(), cmdCtx.Cfg.StatePath, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cmdCtx, store, nil
}

func newMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, store, err := openStateRaw(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			version, err := store.Version(cmd.Context())
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer
			if r.Mode() == output.ModeJSON {
				return r.JSON(map[string]any{"applied": n, "version": version})
			}
			r.Printf("applied %d migrations, now at version %d\n", n, version)
			return nil
		},
	}
}

func newMigrateDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, store, err := openStateRaw(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			version, err := store.MigrateDown(cmd.Context())
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer
			if r.Mode() == output.ModeJSON {
				return r.JSON(map[string]any{"rolled_back": version})
			}
			if version == 0 {
				r.Println("nothing to roll back")
				return nil
			}
			r.Printf("rolled back version %d\n", version)
			return nil
		},
	}
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, store, err := openStateRaw(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			statuses, err := store.Status(cmd.Context())
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer
			if r.Mode() == output.ModeJSON {
				return r.JSON(statuses)
			}
			rows := make([][]any, len(statuses))
			for i, s := range statuses {
				applied := r.Styles().Muted.Render("pending")
				if s.Applied {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				rows[i] = []any{s.Version, s.Source, applied}
			}
			r.Table([]string{"Version", "Source", "Applied"}, rows)
			return nil
		},
	}
}
