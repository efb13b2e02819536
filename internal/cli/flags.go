package cli

import (
	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// projectTypeValue is a pflag.Value that only accepts known project types.
type projectTypeValue struct {
	pt *domain.ProjectType
}

var _ pflag.Value = (*projectTypeValue)(nil)

func newProjectTypeValue(pt *domain.ProjectType) *projectTypeValue {
	return &projectTypeValue{pt: pt}
}

func (v *projectTypeValue) String() string {
	if v.pt == nil {
		return ""
	}
	return string(*v.pt)
}

func (v *projectTypeValue) Set(s string) error {
	pt, err := domain.ParseProjectType(s)
	if err != nil {
		return err
	}
	*v.pt = pt
	return nil
}

func (v *projectTypeValue) Type() string { return "type" }

func completeProjectType(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(domain.ProjectTypes))
	for _, pt := range domain.ProjectTypes {
		out = append(out, string(pt)+"\t"+pt.Label())
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeItemIDs offers catalog item IDs not already on the command line.
func completeItemIDs(app *App) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		seen := make(map[string]bool, len(args))
		for _, a := range args {
			seen[a] = true
		}
		c := app.Checklist.Catalog()
		var out []string
		for _, id := range c.ItemIDs() {
			if seen[id] {
				continue
			}
			if it, ok := c.Item(id); ok {
				out = append(out, id+"\t"+it.Text)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
