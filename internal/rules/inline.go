package rules

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gorewood/guidedocs/internal/message"
)

// EmojiCDN hosts custom emoji images by numeric id.
const EmojiCDN = "https://cdn.discordapp.com/emojis/"

var (
	animatedEmojiPattern = regexp.MustCompile(`<a:([^:\s<>]+):([0-9]+)>`)
	staticEmojiPattern   = regexp.MustCompile(`<:([^:\s<>]{2,}):([0-9]+)>`)
)

// Emoji renders custom emoji markup (<:name:id> and <a:name:id>) as images.
type Emoji struct{}

// Name implements Rule.
func (Emoji) Name() string { return "emoji" }

// Apply implements Rule.
func (Emoji) Apply(_ context.Context, msg *message.Message) {
	msg.Content = replaceMatches(msg.Content, animatedEmojiPattern, func(g []string) string {
		return emojiHTML(g[1], g[2], ".gif")
	})
	msg.Content = replaceMatches(msg.Content, staticEmojiPattern, func(g []string) string {
		return emojiHTML(g[1], g[2], ".png")
	})
}

func emojiHTML(name, id, ext string) string {
	return fmt.Sprintf(`<img class="emoji" title="%s" alt="%s" src="%s%s%s?v=1">`, name, name, EmojiCDN, id, ext)
}

const underlineDelimiter = "__"

// Markup converts __underline__ pairs to <u></u>. An unpaired trailing
// delimiter is left as text.
type Markup struct{}

// Name implements Rule.
func (Markup) Name() string { return "markup" }

// Apply implements Rule.
func (Markup) Apply(_ context.Context, msg *message.Message) {
	var replacements []Replacement

	offset := 0
	for {
		i := strings.Index(msg.Content[offset:], underlineDelimiter)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(underlineDelimiter)
		replacements = append(replacements, Replacement{Start: start, End: end})
		offset = end
	}

	if len(replacements)%2 == 1 {
		replacements = replacements[:len(replacements)-1]
	}

	// open/close follows forward order
	for i := range replacements {
		if i%2 == 0 {
			replacements[i].Text = "<u>"
		} else {
			replacements[i].Text = "</u>"
		}
	}

	msg.Content = Splice(msg.Content, replacements)
}

// lineBreakToken forces an empty line in chat clients.
const lineBreakToken = "_ _"

// LineBreak removes manual line-break tokens.
type LineBreak struct{}

// Name implements Rule.
func (LineBreak) Name() string { return "line-break" }

// Apply implements Rule.
func (LineBreak) Apply(_ context.Context, msg *message.Message) {
	msg.Content = strings.ReplaceAll(msg.Content, lineBreakToken, "")
}
