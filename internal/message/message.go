// Package message holds the unit of work for the formatting pipeline: one
// delimited entry of an exported chat channel.
package message

import (
	"strings"
)

// CommandPrefix starts a command line in a channel export. A command line
// terminates the message that precedes it.
const CommandPrefix = "."

// codeFence delimits fenced code blocks in the chat dialect.
const codeFence = "```"

// Message is one chat entry being converted to Markdown.
//
// Content is rewritten in place by each rule. Embeds are HTML fragments
// rendered after Content, in the order their links appear in Content.
// Command is the command line that terminated the message; it is rewritten
// by the command rule and rendered last when non-empty.
type Message struct {
	Content string
	Embeds  []string
	Command string
}

// New creates a message from raw content and its terminating command line.
func New(content, command string) *Message {
	return &Message{Content: content, Command: command}
}

// AddEmbed appends an HTML fragment to the message.
func (m *Message) AddEmbed(html string) {
	m.Embeds = append(m.Embeds, html)
}

// Split breaks a raw channel export into messages. Every line beginning with
// CommandPrefix closes the current message and becomes its Command. Lines
// after the last command line form a final message with no command.
func Split(raw string) []*Message {
	var messages []*Message
	var lines []string

	for _, line := range splitLines(raw) {
		if strings.HasPrefix(line, CommandPrefix) {
			messages = append(messages, New(strings.Join(lines, "\n"), line))
			lines = nil
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) > 0 {
		messages = append(messages, New(strings.Join(lines, "\n"), ""))
	}

	return messages
}

// Render serializes the message into its Markdown form.
//
// Each content line becomes its own paragraph, separated by exactly one blank
// line. Lines inside fenced code blocks stay on consecutive lines. Embeds
// follow on consecutive lines, then the command. Returns "" when there is
// nothing to render.
func (m *Message) Render() string {
	var blocks []string

	if body := renderContent(m.Content); body != "" {
		blocks = append(blocks, body)
	}
	if len(m.Embeds) > 0 {
		blocks = append(blocks, strings.Join(m.Embeds, "\n"))
	}
	if m.Command != "" {
		blocks = append(blocks, m.Command)
	}

	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// renderContent joins paragraphs with blank lines while keeping code blocks intact.
func renderContent(content string) string {
	var builder strings.Builder
	inCode := false

	for _, line := range splitLines(content) {
		isFence := strings.HasPrefix(strings.TrimSpace(line), codeFence)

		if !inCode && strings.TrimSpace(line) == "" {
			continue
		}

		if builder.Len() > 0 {
			if inCode {
				builder.WriteString("\n")
			} else {
				builder.WriteString("\n\n")
			}
		}
		builder.WriteString(line)

		if isFence && strings.Count(line, codeFence)%2 == 1 {
			inCode = !inCode
		}
	}

	return builder.String()
}

// splitLines splits text into lines, accepting \n and \r\n endings.
// A single trailing line ending does not produce an empty final line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
