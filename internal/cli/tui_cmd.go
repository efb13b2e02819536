package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), app)
		},
	}
}

func runTUI(ctx context.Context, app *App) error {
	if app.RunTUI != nil {
		return app.RunTUI(ctx, app)
	}
	p := tea.NewProgram(newChecklistModel(ctx, app), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
