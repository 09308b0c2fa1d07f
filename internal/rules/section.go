package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/gorewood/guidedocs/internal/message"
)

var (
	sectionPattern = regexp.MustCompile(`(?m)^>[ \t]+(.+)$`)

	// emphasisPattern matches emphasis markers, and spreadsheet tokens so
	// that their underscores survive.
	emphasisPattern = regexp.MustCompile(`\$data_pvme:[^$\n]*\$|[*_]+`)
)

// tableOfContents names a section that is dropped along with everything
// after it; the site navigation replaces it.
const tableOfContents = "table of contents"

// Section turns "> __**Title:**__" lines into "## Title" headings.
type Section struct{}

// Name implements Rule.
func (Section) Name() string { return "section" }

// Apply implements Rule.
func (Section) Apply(_ context.Context, msg *message.Message) {
	content := msg.Content
	matches := sectionPattern.FindAllStringSubmatchIndex(content, -1)

	for i := len(matches) - 1; i >= 0; i-- {
		loc := matches[i]
		title := sectionTitle(content[loc[2]:loc[3]])
		if title == "" {
			continue
		}
		if strings.EqualFold(title, tableOfContents) {
			content = strings.TrimRight(content[:loc[0]], "\n")
			continue
		}
		content = content[:loc[0]] + "## " + title + content[loc[1]:]
	}

	msg.Content = content
}

// sectionTitle strips emphasis and a single trailing colon from raw.
func sectionTitle(raw string) string {
	title := emphasisPattern.ReplaceAllStringFunc(raw, func(m string) string {
		if strings.HasPrefix(m, "$") {
			return m
		}
		return ""
	})
	title = strings.TrimSpace(title)
	title = strings.TrimSuffix(title, ":")
	return strings.TrimSpace(title)
}
