// Package rules implements the text-rewrite steps of the formatting pipeline.
//
// Each Rule rewrites one message in place. Rules hold no mutable state and
// may be applied to different messages concurrently. Rules that replace
// several matches collect all matches first and splice replacements from the
// last match to the first, so offsets of the remaining matches stay valid
// while replacement lengths differ from match lengths.
package rules

import (
	"context"
	"regexp"

	"github.com/gorewood/guidedocs/internal/embed"
	"github.com/gorewood/guidedocs/internal/message"
)

// Rule is one rewrite step.
type Rule interface {
	// Name identifies the rule in logs and tests.
	Name() string
	// Apply rewrites msg in place.
	Apply(ctx context.Context, msg *message.Message)
}

// Resolver turns links into embeds.
type Resolver interface {
	Resolve(ctx context.Context, url string) (embed.Embed, bool)
	ResolveAll(ctx context.Context, urls []string) []embed.Result
}

// CellLookup resolves spreadsheet cell references.
type CellLookup interface {
	Cell(ctx context.Context, worksheet, ref string) string
}

// Replacement substitutes Text for content[Start:End].
type Replacement struct {
	Start int
	End   int
	Text  string
}

// Splice applies replacements, which must be sorted by Start and must not
// overlap. Replacements are applied last to first.
func Splice(content string, replacements []Replacement) string {
	for i := len(replacements) - 1; i >= 0; i-- {
		r := replacements[i]
		content = content[:r.Start] + r.Text + content[r.End:]
	}
	return content
}

// replaceMatches replaces every match of re in content with the result of
// render, which receives the submatches of that match.
func replaceMatches(content string, re *regexp.Regexp, render func(groups []string) string) string {
	indexes := re.FindAllStringSubmatchIndex(content, -1)
	if len(indexes) == 0 {
		return content
	}

	replacements := make([]Replacement, 0, len(indexes))
	for _, loc := range indexes {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = content[loc[2*g]:loc[2*g+1]]
			}
		}
		replacements = append(replacements, Replacement{Start: loc[0], End: loc[1], Text: render(groups)})
	}

	return Splice(content, replacements)
}
