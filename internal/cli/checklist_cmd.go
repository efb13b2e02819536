package cli

import (
	"fmt"

	"github.com/alexanderramin/mapcheck/internal/cli/formatter"
	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/service"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show overall and per-phase progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printStatus(cmd, app)
		},
	}
}

func printStatus(cmd *cobra.Command, app *App) error {
	v := app.Checklist.View()
	out := formatter.FormatStatus(catalogTitle(app.Checklist), v.ProjectType, v.SearchTerm, app.Checklist.Summary())
	_, err := fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func newListCmd(app *App) *cobra.Command {
	var collapsed bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the filtered checklist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := buildChecklistView(app.Checklist, !collapsed)
			_, err := fmt.Fprint(cmd.OutOrStdout(), formatter.FormatList(v))
			return err
		},
	}
	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "show phase totals only")
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "toggle ITEM_ID...",
		Short:             "Flip the completion of one or more items",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeItemIDs(app),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.Checklist.Catalog()
			items := make([]*domain.Item, 0, len(args))
			for _, id := range args {
				it, ok := c.Item(id)
				if !ok {
					return fmt.Errorf("%w: %q", domain.ErrUnknownItem, id)
				}
				items = append(items, it)
			}
			for _, it := range items {
				checked, err := app.Checklist.ToggleItem(cmd.Context(), it.ID)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatToggle(it, checked))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d%%\n", formatter.Dim("Progress:"), app.Checklist.ProgressPercent())
			return nil
		},
	}
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Uncheck every item and clear saved progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset clears all saved progress; pass --yes to confirm")
			}
			n := app.Checklist.Checked().CountTrue()
			if err := app.Checklist.ResetProgress(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d checked item(s) cleared\n", formatter.Bold("Reset:"), n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

func newResourcesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List important reference links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), formatter.FormatResources(app.Checklist.Resources()))
			return err
		},
	}
}

// buildChecklistView collects the visible tree from svc. Sections are only
// included when expanded is true.
func buildChecklistView(svc service.Checklist, expanded bool) formatter.ChecklistView {
	view := svc.View()
	sum := svc.Summary()
	tallies := make(map[string]formatter.PhaseView, len(sum.Phases))
	for _, p := range sum.Phases {
		tallies[p.Phase.ID] = formatter.PhaseView{Phase: p.Phase, Tally: p.Tally}
	}

	out := formatter.ChecklistView{
		Title:       catalogTitle(svc),
		ProjectType: view.ProjectType,
		SearchTerm:  view.SearchTerm,
		Percent:     svc.ProgressPercent(),
		Checked:     svc.Checked(),
	}
	for _, p := range svc.VisiblePhases() {
		pv := tallies[p.ID]
		pv.Phase = p
		pv.Expanded = expanded
		if pv.Expanded {
			for _, s := range svc.VisibleSections(p) {
				pv.Sections = append(pv.Sections, formatter.SectionView{Section: s, Items: svc.VisibleItems(s)})
			}
		}
		out.Phases = append(out.Phases, pv)
	}
	return out
}

func catalogTitle(svc service.Checklist) string {
	if t := svc.Catalog().Metadata.Title; t != "" {
		return t
	}
	return "MAP Checklist"
}
