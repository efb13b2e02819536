package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/service"
	"github.com/spf13/cobra"
)

// App holds what CLI commands need: the checklist service plus a few
// process-level hooks that tests replace.
type App struct {
	Checklist service.Checklist

	// IsInteractive reports whether stdin is a terminal. A bare invocation
	// opens the TUI when it is, and prints status otherwise.
	IsInteractive func() bool
	// Now is the clock used for relative dates.
	Now func() time.Time
	// RunTUI runs the interactive model. Nil means a real tea.Program.
	RunTUI func(ctx context.Context, app *App) error
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "mapcheck" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var (
		projectType domain.ProjectType
		search      string
	)

	root := &cobra.Command{
		Use:   "mapcheck",
		Short: "MAP migration checklist tracker",
		Long: `mapcheck tracks completion of the MAP migration checklist.

Progress is saved locally after every change. Use --type to filter the
checklist to MAP or MAP Lite sections and --search to narrow items.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if f := cmd.Flags().Lookup("type"); f != nil && f.Changed {
				if err := app.Checklist.SetProjectType(projectType); err != nil {
					return err
				}
			}
			if f := cmd.Flags().Lookup("search"); f != nil && f.Changed {
				app.Checklist.SetSearchTerm(search)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.interactive() {
				return runTUI(cmd.Context(), app)
			}
			return printStatus(cmd, app)
		},
	}

	root.PersistentFlags().Var(newProjectTypeValue(&projectType), "type", "project type filter: both, map or map-lite")
	root.PersistentFlags().StringVar(&search, "search", "", "case-insensitive item text filter")
	_ = root.RegisterFlagCompletionFunc("type", completeProjectType)

	root.AddCommand(
		newStatusCmd(app),
		newListCmd(app),
		newToggleCmd(app),
		newResetCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newResourcesCmd(app),
		newHistoryCmd(app),
		newTUICmd(app),
	)

	return root
}
