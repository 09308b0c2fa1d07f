package rules

import (
	"context"
	"regexp"

	"github.com/gorewood/guidedocs/internal/message"
)

var cellTokenPattern = regexp.MustCompile(`\$data_pvme:([^!$\n]+)!([A-Za-z]+[0-9]+)\$`)

// notAvailable stands in for values when no lookup is configured.
const notAvailable = "N/A"

// Spreadsheet replaces $data_pvme:Worksheet!B2$ tokens with cell values.
type Spreadsheet struct {
	Cells CellLookup
}

// Name implements Rule.
func (Spreadsheet) Name() string { return "spreadsheet" }

// Apply implements Rule.
func (s Spreadsheet) Apply(ctx context.Context, msg *message.Message) {
	msg.Content = replaceMatches(msg.Content, cellTokenPattern, func(g []string) string {
		if s.Cells == nil {
			return notAvailable
		}
		return s.Cells.Cell(ctx, g[1], g[2])
	})
}
