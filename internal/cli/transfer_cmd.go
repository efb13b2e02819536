package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/mapcheck/internal/cli/formatter"
	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/store"
	"github.com/spf13/cobra"
)

const stdioPath = "-"

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write progress to a JSON file",
		Long: `Write the project type and checked items to a JSON file.

Without --out the file is written to the configured export directory as
map-checklist-progress.json. Use --out - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == stdioPath {
				return app.Checklist.ExportSnapshot(cmd.Context(), cmd.OutOrStdout())
			}
			path, err := app.Checklist.ExportFile(cmd.Context(), out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Progress exported to %s\n", formatter.StyleGreen.Render("✔"), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (- for stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace progress with an exported JSON file",
		Long: `Replace the project type and all checked items with the contents of
an exported progress file. Use - to read from stdin.

Missing or malformed fields fall back to defaults and are reported. A file
that is not a JSON object leaves progress untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var outcome store.ImportOutcome
			if path == stdioPath {
				outcome, _ = app.Checklist.ImportSnapshot(cmd.Context(), cmd.InOrStdin())
			} else {
				pending := app.Checklist.ImportFileAsync(cmd.Context(), path)
				stop := func() {}
				if app.interactive() {
					stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Importing "+path)
				}
				outcome = <-pending
				stop()
			}
			return printImportOutcome(cmd, outcome)
		},
	}
}

func printImportOutcome(cmd *cobra.Command, outcome store.ImportOutcome) error {
	switch {
	case outcome.Err != nil:
		if errors.Is(outcome.Err, domain.ErrImportParse) {
			return fmt.Errorf("%w; progress left unchanged", outcome.Err)
		}
		return outcome.Err
	case outcome.Superseded:
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Import skipped: a newer import was already applied."))
		return nil
	default:
		_, err := fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImport(outcome.Snapshot))
		return err
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exports and imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			records, err := app.Checklist.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(records, app.now()))
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	return cmd
}
