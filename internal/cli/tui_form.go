package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/mapcheck/internal/persistence"
	"github.com/charmbracelet/huh"
)

// newImportForm asks for the path of a progress file to import.
func newImportForm(path *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Import progress file").
				Description("Replaces the project type and every checked item.").
				Placeholder(persistence.DefaultExportName).
				Value(path).
				Validate(validateImportPath),
		),
	).WithTheme(mapcheckHuhTheme()).WithShowHelp(false)
}

func validateImportPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("enter a file path")
	}
	info, err := os.Stat(s)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("no such file: %s", s)
	case err != nil:
		return err
	case info.IsDir():
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}
