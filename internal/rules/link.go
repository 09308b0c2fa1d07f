package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/gorewood/guidedocs/internal/message"
)

var linkPattern = regexp.MustCompile("(?i)(?:https?|ftps?)://[^\\s<>\"'`]+")

// trailingPunctuation is trimmed from the end of a link; it belongs to the
// surrounding sentence or markup.
const trailingPunctuation = ".,;:!?*~"

// LinkEmbed appends an embed for every link in the content that can be
// embedded. The content itself is not changed, so links that cannot be
// embedded remain plain links.
//
// Links inside an HTML attribute or wrapped in <...> (the chat client's
// embed suppression) are skipped.
type LinkEmbed struct {
	Resolver Resolver
}

// Name implements Rule.
func (LinkEmbed) Name() string { return "link-embed" }

// Apply implements Rule.
func (l LinkEmbed) Apply(ctx context.Context, msg *message.Message) {
	if l.Resolver == nil {
		return
	}
	links := FindLinks(msg.Content)
	if len(links) == 0 {
		return
	}
	for _, res := range l.Resolver.ResolveAll(ctx, links) {
		if res.Found {
			msg.AddEmbed(res.Embed.HTML)
		}
	}
}

// FindLinks returns the embeddable links in content, left to right.
func FindLinks(content string) []string {
	var links []string
	for _, loc := range linkPattern.FindAllStringIndex(content, -1) {
		if loc[0] > 0 && strings.ContainsRune(`<"'=`, rune(content[loc[0]-1])) {
			continue
		}
		if link := trimLink(content[loc[0]:loc[1]]); link != "" {
			links = append(links, link)
		}
	}
	return links
}

// trimLink drops trailing punctuation and an unbalanced closing parenthesis.
func trimLink(link string) string {
	for link != "" {
		last := link[len(link)-1]
		switch {
		case strings.IndexByte(trailingPunctuation, last) >= 0:
			link = link[:len(link)-1]
		case last == ')' && strings.Count(link, "(") < strings.Count(link, ")"):
			link = link[:len(link)-1]
		default:
			return link
		}
	}
	return link
}
