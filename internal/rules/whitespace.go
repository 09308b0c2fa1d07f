package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/gorewood/guidedocs/internal/message"
)

// NBSP keeps spacing that the Markdown renderer would otherwise collapse.
const NBSP = "\u00a0"

// tabWidth is the number of columns a tab occupies.
const tabWidth = 4

const codeFence = "```"

// variationSelector is the text-presentation selector the chat client appends
// to some bullet glyphs; it shows up as a visible box in browsers.
const variationSelector = "\ufe0e"

var (
	spaceRunPattern = regexp.MustCompile(`[ \t]{2,}|\t`)
	leadingSpace    = regexp.MustCompile(`(?m)^ `)
)

// Whitespace preserves indentation and alignment. Tabs and runs of two or
// more spaces become alternating NBSP/space sequences of the same width, and
// a single space at the start of a line becomes an NBSP. Fenced code blocks
// are left untouched.
type Whitespace struct{}

// Name implements Rule.
func (Whitespace) Name() string { return "whitespace" }

// Apply implements Rule.
func (Whitespace) Apply(_ context.Context, msg *message.Message) {
	segments := strings.Split(msg.Content, codeFence)
	for i := 0; i < len(segments); i += 2 {
		segments[i] = normalizeSpaces(segments[i], i == 0)
	}
	msg.Content = strings.Join(segments, codeFence)
}

// normalizeSpaces rewrites one segment of prose. Only the first segment
// starts at a real line start; later ones start right after a fence.
func normalizeSpaces(text string, atLineStart bool) string {
	text = strings.ReplaceAll(text, variationSelector, " ")

	text = replaceMatches(text, spaceRunPattern, func(g []string) string {
		return protectedRun(columns(g[0]))
	})

	protected := leadingSpace.ReplaceAllString(text, NBSP)
	if !atLineStart && strings.HasPrefix(text, " ") {
		// the segment continues a line, keep its first space ordinary
		protected = " " + strings.TrimPrefix(protected, NBSP)
	}
	return protected
}

// columns returns the display width of a run of spaces and tabs.
func columns(run string) int {
	width := 0
	for _, r := range run {
		if r == '\t' {
			width += tabWidth
		} else {
			width++
		}
	}
	return width
}

// protectedRun builds a run of width columns that renderers will not collapse.
func protectedRun(width int) string {
	var builder strings.Builder
	for i := range width {
		if i%2 == 0 {
			builder.WriteString(NBSP)
		} else {
			builder.WriteByte(' ')
		}
	}
	return builder.String()
}

var fencePattern = regexp.MustCompile("```([A-Za-z0-9_+\\-]+\n)?")

// CodeFence puts every ``` fence on its own line so code blocks are detected
// even when the source ran them into surrounding prose. A language tag on an
// opening fence stays attached to it.
type CodeFence struct{}

// Name implements Rule.
func (CodeFence) Name() string { return "code-fence" }

// Apply implements Rule.
func (CodeFence) Apply(_ context.Context, msg *message.Message) {
	content := msg.Content
	matches := fencePattern.FindAllStringSubmatchIndex(content, -1)
	replacements := make([]Replacement, 0, len(matches))

	for i, loc := range matches {
		opening := i%2 == 0
		start, end := loc[0], loc[0]+len(codeFence)
		text := codeFence

		if opening && loc[2] >= 0 {
			// language tag includes its newline
			end = loc[1]
			text += content[loc[2]:loc[3]]
		}

		if start > 0 && content[start-1] != '\n' {
			text = "\n" + text
		}
		if !strings.HasSuffix(text, "\n") && end < len(content) && content[end] != '\n' {
			text += "\n"
		}

		replacements = append(replacements, Replacement{Start: start, End: end, Text: text})
	}

	msg.Content = Splice(content, replacements)
}
