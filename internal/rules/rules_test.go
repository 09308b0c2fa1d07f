package rules

import (
	"context"
	"strings"
	"testing"

	"github.com/gorewood/guidedocs/internal/embed"
	"github.com/gorewood/guidedocs/internal/message"
)

// fakeResolver resolves only the URLs it knows.
type fakeResolver struct {
	embeds map[string]embed.Embed
}

func (f *fakeResolver) Resolve(_ context.Context, url string) (embed.Embed, bool) {
	e, ok := f.embeds[url]
	return e, ok
}

func (f *fakeResolver) ResolveAll(ctx context.Context, urls []string) []embed.Result {
	results := make([]embed.Result, len(urls))
	for i, url := range urls {
		e, ok := f.Resolve(ctx, url)
		results[i] = embed.Result{URL: url, Embed: e, Found: ok}
	}
	return results
}

// fakeCells serves cell values from a map keyed by "worksheet!ref".
type fakeCells map[string]string

func (f fakeCells) Cell(_ context.Context, worksheet, ref string) string {
	if v, ok := f[worksheet+"!"+ref]; ok {
		return v
	}
	return notAvailable
}

func apply(rule Rule, content string) string {
	msg := message.New(content, "")
	rule.Apply(context.Background(), msg)
	return msg.Content
}

func TestSplice_PreservesOriginalOffsets(t *testing.T) {
	content := "abcdefghij"
	replacements := []Replacement{
		{Start: 1, End: 3, Text: "XYZW"},
		{Start: 5, End: 6, Text: ""},
		{Start: 8, End: 10, Text: "!"},
	}

	got := Splice(content, replacements)

	if got != "aXYZWdegh!" {
		t.Errorf("Splice() = %q, want %q", got, "aXYZWdegh!")
	}
	wantLen := len(content)
	for _, r := range replacements {
		wantLen += len(r.Text) - (r.End - r.Start)
	}
	if len(got) != wantLen {
		t.Errorf("len(Splice()) = %d, want %d", len(got), wantLen)
	}
}

func TestSplice_NoReplacements(t *testing.T) {
	if got := Splice("unchanged", nil); got != "unchanged" {
		t.Errorf("Splice() = %q", got)
	}
}

func TestCommand(t *testing.T) {
	resolver := &fakeResolver{embeds: map[string]embed.Embed{
		"http://x/y.png": {Kind: embed.KindImage, HTML: `<img class="media" src="http://x/y.png">`},
	}}
	rule := Command{Resolver: resolver}

	tests := []struct {
		command string
		want    string
	}{
		{"", ""},
		{".", ""},
		{"..", "."},
		{".tag:foo", ""},
		{".pin:delete", ""},
		{".img:http://x/y.png", `<img class="media" src="http://x/y.png">`},
		{".file: http://x/y.png ", `<img class="media" src="http://x/y.png">`},
		{".img:http://unknown/z", ""},
		{".img:", ""},
		{".embed:json", ".embed:json"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			msg := message.New("content", tt.command)
			rule.Apply(context.Background(), msg)
			if msg.Command != tt.want {
				t.Errorf("Command = %q, want %q", msg.Command, tt.want)
			}
			if msg.Content != "content" {
				t.Errorf("Content changed to %q", msg.Content)
			}
		})
	}
}

func TestCommand_NilResolver(t *testing.T) {
	msg := message.New("", ".img:http://x/y.png")
	Command{}.Apply(context.Background(), msg)
	if msg.Command != "" {
		t.Errorf("Command = %q, want empty", msg.Command)
	}
}

func TestSection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "emphasis and colon stripped",
			content: "> __**Rotation:**__\ntext",
			want:    "## Rotation\ntext",
		},
		{
			name:    "several sections",
			content: "> **One**\na\n> _Two_\nb",
			want:    "## One\na\n## Two\nb",
		},
		{
			name:    "only one trailing colon dropped",
			content: "> Note::",
			want:    "## Note:",
		},
		{
			name:    "spreadsheet token keeps underscores",
			content: "> **Price $data_pvme:Sheet1!B2$**",
			want:    "## Price $data_pvme:Sheet1!B2$",
		},
		{
			name:    "table of contents truncates",
			content: "intro\n> __Table of Contents__\n- a\n> **Later**",
			want:    "intro",
		},
		{
			name:    "quote marker without space is not a section",
			content: ">not a section",
			want:    ">not a section",
		},
		{
			name:    "empty title left alone",
			content: "> ****",
			want:    "> ****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apply(Section{}, tt.content); got != tt.want {
				t.Errorf("Section = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmoji(t *testing.T) {
	content := "<:concBlast:535533809924571136> and <a:spin:123>!"
	want := `<img class="emoji" title="concBlast" alt="concBlast" src="https://cdn.discordapp.com/emojis/535533809924571136.png?v=1">` +
		` and <img class="emoji" title="spin" alt="spin" src="https://cdn.discordapp.com/emojis/123.gif?v=1">!`

	if got := apply(Emoji{}, content); got != want {
		t.Errorf("Emoji =\n%q\nwant\n%q", got, want)
	}
}

func TestEmoji_IgnoresNonEmoji(t *testing.T) {
	for _, content := range []string{"<:x:123>", "<:name:abc>", "< :name:1>", "plain"} {
		if got := apply(Emoji{}, content); got != content {
			t.Errorf("Emoji(%q) = %q, want unchanged", content, got)
		}
	}
}

func TestMarkup(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"a __b__ c __d", "a <u>b</u> c __d"},
		{"__a__ __b__", "<u>a</u> <u>b</u>"},
		{"no delimiters", "no delimiters"},
		{"__", "__"},
		{"____", "<u></u>"},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			if got := apply(Markup{}, tt.content); got != tt.want {
				t.Errorf("Markup(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestLineBreak(t *testing.T) {
	if got := apply(LineBreak{}, "above\n_ _\nbelow _ _"); got != "above\n\nbelow " {
		t.Errorf("LineBreak = %q", got)
	}
}

func TestIdempotence(t *testing.T) {
	content := "> __**Mechanics:**__\nUse <:vuln:123> then __stun__ the boss.\n<a:spin:456>"
	rules := []Rule{Section{}, Emoji{}, Markup{}}

	once := content
	for _, r := range rules {
		once = apply(r, once)
	}
	twice := once
	for _, r := range rules {
		twice = apply(r, twice)
	}

	if once == content {
		t.Fatal("first pass made no changes")
	}
	if twice != once {
		t.Errorf("second pass changed output:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestFindLinks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"link at start", "https://youtu.be/abc rest", []string{"https://youtu.be/abc"}},
		{"sentence punctuation", "see https://example.com/a.png.", []string{"https://example.com/a.png"}},
		{"bold markers", "**https://example.com/a**", []string{"https://example.com/a"}},
		{"balanced parens kept", "(https://en.wiki.org/Foo_(bar))", []string{"https://en.wiki.org/Foo_(bar)"}},
		{"suppressed link", "<https://example.com/x>", nil},
		{"html attribute", `<img src="https://cdn.example.com/e.png">`, nil},
		{"ftp and order", "ftp://files.example.com/a then http://b.example", []string{"ftp://files.example.com/a", "http://b.example"}},
		{"no links", "nothing here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindLinks(tt.content)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("FindLinks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLinkEmbed(t *testing.T) {
	resolver := &fakeResolver{embeds: map[string]embed.Embed{
		"https://good.example/a.png": {HTML: "<img a>"},
		"https://good.example/b.mp4": {HTML: "<video b>"},
	}}
	content := "first https://good.example/b.mp4 then https://bad.example/x, " +
		"<https://good.example/a.png> then https://good.example/a.png."
	msg := message.New(content, "")

	LinkEmbed{Resolver: resolver}.Apply(context.Background(), msg)

	if msg.Content != content {
		t.Errorf("Content changed to %q", msg.Content)
	}
	want := []string{"<video b>", "<img a>"}
	if strings.Join(msg.Embeds, "|") != strings.Join(want, "|") {
		t.Errorf("Embeds = %q, want %q", msg.Embeds, want)
	}
}

func TestWhitespace(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain text untouched", "one two three", "one two three"},
		{"double space", "a  b", "a" + NBSP + " b"},
		{"three spaces", "a   b", "a" + NBSP + " " + NBSP + "b"},
		{"tab is four columns", "\tx", NBSP + " " + NBSP + " x"},
		{"leading single space", " x", NBSP + "x"},
		{"leading space on later line", "line\n • item", "line\n" + NBSP + "• item"},
		{"variation selector", "•\ufe0e item", "•" + NBSP + " item"},
		{"code block untouched", "```\n  code\n```  after", "```\n  code\n```" + NBSP + " after"},
		{"single space after fence", "```x``` y", "```x``` y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apply(Whitespace{}, tt.content); got != tt.want {
				t.Errorf("Whitespace(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestWhitespace_PreservesWidth(t *testing.T) {
	content := "col1    col2\tcol3"
	got := apply(Whitespace{}, content)
	if n, want := len([]rune(got)), len([]rune("col1    col2    col3")); n != want {
		t.Errorf("rune width = %d, want %d (%q)", n, want, got)
	}
}

func TestCodeFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"inline fences split out", "text```code```more", "text\n```\ncode\n```\nmore"},
		{"language tag kept", "see:```py\nx```", "see:\n```py\nx\n```"},
		{"already normalized", "```py\nprint()\n```", "```py\nprint()\n```"},
		{"no fences", "plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(CodeFence{}, tt.content)
			if got != tt.want {
				t.Errorf("CodeFence(%q) = %q, want %q", tt.content, got, tt.want)
			}
			if again := apply(CodeFence{}, got); again != got {
				t.Errorf("CodeFence not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSpreadsheet(t *testing.T) {
	cells := fakeCells{"Sheet1!B2": "2,400,000"}
	rule := Spreadsheet{Cells: cells}

	got := apply(rule, "Price: $data_pvme:Sheet1!B2$ gp, other $data_pvme:Perks!C9$")
	want := "Price: 2,400,000 gp, other N/A"
	if got != want {
		t.Errorf("Spreadsheet = %q, want %q", got, want)
	}
}

func TestSpreadsheet_NoLookup(t *testing.T) {
	if got := apply(Spreadsheet{}, "$data_pvme:Sheet1!B2$"); got != "N/A" {
		t.Errorf("Spreadsheet = %q, want N/A", got)
	}
}
