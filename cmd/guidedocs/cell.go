package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/guidedocs/internal/output"
	"github.com/gorewood/guidedocs/internal/sheets"
)

// newCellCmd creates the cell command.
func newCellCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "cell WORKSHEET REF",
		Short: "Look up a spreadsheet value",
		Long: `Print the value a $data_pvme:WORKSHEET!REF$ token resolves to.

Requires a spreadsheet id (spreadsheet_id or $GUIDEDOCS_SHEET_ID) and
credentials (credentials_file, $GOOGLE_APPLICATION_CREDENTIALS or
$GOOGLE_API_KEY). Unresolvable values print as N/A.

Examples:
  guidedocs cell Perks B2
  guidedocs cell "Ancient Invigoration" AA10 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCell(cmd, d, args[0], args[1])
		},
	}
}

func runCell(cmd *cobra.Command, d deps, worksheet, ref string) error {
	a, err := newApp(cmd, d)
	if err != nil {
		return err
	}
	defer a.close()

	if _, _, err := sheets.ParseCellRef(ref); err != nil {
		err = output.NewUserError(err.Error())
		a.printer.Error(err)
		return err
	}

	if !a.printer.IsJSON() && d.fetcher == nil && !a.cfg.SheetsEnabled() {
		a.printer.Warn("no spreadsheet configured; set %s and credentials", "spreadsheet_id")
	}

	value := a.cells.Cell(cmd.Context(), worksheet, ref)
	if a.printer.IsJSON() {
		return a.printer.Success(map[string]any{
			"worksheet": worksheet,
			"ref":       ref,
			"value":     value,
			"available": value != sheets.NotAvailable,
		})
	}
	a.printer.Println(value)
	return nil
}
