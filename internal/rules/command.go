package rules

import (
	"context"
	"strings"

	"github.com/gorewood/guidedocs/internal/message"
)

// Command interprets the command line that terminated a message.
//
//	.            cleared
//	..           literal "."
//	.tag:/.pin:  cleared (bot administration)
//	.img:/.file: replaced with the embed for the URL, or cleared
//
// Any other command is kept verbatim.
type Command struct {
	Resolver Resolver
}

// Name implements Rule.
func (Command) Name() string { return "command" }

// Apply implements Rule.
func (c Command) Apply(ctx context.Context, msg *message.Message) {
	cmd := msg.Command
	switch {
	case cmd == "":
		return
	case cmd == ".":
		msg.Command = ""
	case cmd == "..":
		msg.Command = "."
	case hasAnyPrefix(cmd, ".tag:", ".pin:"):
		msg.Command = ""
	case hasAnyPrefix(cmd, ".img:", ".file:"):
		msg.Command = c.embedCommand(ctx, cmd)
	}
}

func (c Command) embedCommand(ctx context.Context, cmd string) string {
	_, url, _ := strings.Cut(cmd, ":")
	url = strings.TrimSpace(url)
	if url == "" || c.Resolver == nil {
		return ""
	}
	e, ok := c.Resolver.Resolve(ctx, url)
	if !ok {
		return ""
	}
	return e.HTML
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
