// Package pipeline runs the formatting rules over channel exports.
//
// A channel is split into messages, every message is run through the command
// rule and then the ordered rule list, and the rendered messages are
// joined in their original order, one blank line apart. Messages are independent, so they
// are formatted concurrently.
package pipeline

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gorewood/guidedocs/internal/message"
	"github.com/gorewood/guidedocs/internal/rules"
)

// DefaultWorkers bounds the number of messages formatted at once.
const DefaultWorkers = 8

// Options configures a Pipeline.
type Options struct {
	// Workers bounds concurrent message formatting. Zero uses DefaultWorkers.
	Workers int
	// Logger receives per-rule debug output. Nil disables logging.
	Logger *zap.Logger
}

// Pipeline applies the command rule and an ordered list of rules to messages.
type Pipeline struct {
	command rules.Rule
	rules   []rules.Rule
	workers int
	log     *zap.Logger
}

// New builds a pipeline with the default rule order.
func New(resolver rules.Resolver, cells rules.CellLookup, opts Options) *Pipeline {
	return NewWithRules(rules.Command{Resolver: resolver}, DefaultRules(resolver, cells), opts)
}

// NewWithRules builds a pipeline from an explicit command rule and rule list.
func NewWithRules(command rules.Rule, ruleList []rules.Rule, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pipeline{
		command: command,
		rules:   ruleList,
		workers: opts.Workers,
		log:     opts.Logger,
	}
}

// DefaultRules returns the content rules in the order they must run.
//
// Section runs before Markup so heading emphasis is stripped rather than
// converted. Spreadsheet runs last so cell values are never rewritten.
func DefaultRules(resolver rules.Resolver, cells rules.CellLookup) []rules.Rule {
	return []rules.Rule{
		rules.Section{},
		rules.Emoji{},
		rules.Markup{},
		rules.LinkEmbed{Resolver: resolver},
		rules.Whitespace{},
		rules.LineBreak{},
		rules.CodeFence{},
		rules.Spreadsheet{Cells: cells},
	}
}

// Rules returns the command rule followed by the content rules.
func (p *Pipeline) Rules() []rules.Rule {
	all := make([]rules.Rule, 0, len(p.rules)+1)
	if p.command != nil {
		all = append(all, p.command)
	}
	return append(all, p.rules...)
}

// FormatMessage applies every rule to msg in order.
func (p *Pipeline) FormatMessage(ctx context.Context, msg *message.Message) {
	for _, rule := range p.Rules() {
		rule.Apply(ctx, msg)
	}
}

// FormatMessages formats msgs concurrently and returns their rendered forms
// in input order. It returns early with ctx's error if ctx is cancelled.
func (p *Pipeline) FormatMessages(ctx context.Context, msgs []*message.Message) ([]string, error) {
	rendered := make([]string, len(msgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, msg := range msgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.FormatMessage(gctx, msg)
			rendered[i] = msg.Render()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rendered, nil
}

// FormatChannel converts a raw channel export into Markdown. Rendered
// messages are separated by a blank line; messages that render empty are
// dropped.
func (p *Pipeline) FormatChannel(ctx context.Context, raw string) (string, error) {
	msgs := message.Split(raw)
	rendered, err := p.FormatMessages(ctx, msgs)
	if err != nil {
		return "", err
	}

	p.log.Debug("formatted channel",
		zap.Int("messages", len(msgs)),
		zap.Int("bytes", len(raw)),
	)
	return strings.Join(slices.DeleteFunc(rendered, func(doc string) bool { return doc == "" }), "\n"), nil
}
