package embed

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTwitchParent is the site domain passed to Twitch embeds. Twitch
// refuses to render an embed whose parent does not match the hosting page.
const DefaultTwitchParent = "pvme.github.io"

const youtubeTemplate = `<iframe class="media" width="560" height="315" src="https://www.youtube.com/embed/%s" ` +
	`frameborder="0" allow="accelerometer; autoplay; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe>`

// provider is a tier-1 matcher: a URL shape with a fixed HTML template.
type provider struct {
	name    string
	pattern *regexp.Regexp
	render  func(url string, groups []string, parent string) string
}

// providers are checked in order; first match wins. Order matters because
// some shapes are prefixes of others.
var providers = []provider{
	{
		name:    "imgur",
		pattern: regexp.MustCompile(`^https?://i\.imgur\.com/[a-zA-Z0-9]+\.(?:png|jpe?g|gif)$`),
		render: func(url string, _ []string, _ string) string {
			return imageHTML(url)
		},
	},
	{
		name:    "youtu.be",
		pattern: regexp.MustCompile(`^https?://youtu\.be/([a-zA-Z0-9_\-]+)`),
		render: func(_ string, groups []string, _ string) string {
			return fmt.Sprintf(youtubeTemplate, groups[1])
		},
	},
	{
		name:    "youtube",
		pattern: regexp.MustCompile(`^https?://(?:www\.)?youtube\.[a-z0-9.]*?/watch\?(?:[0-9a-zA-Z$\-_.+!*'(),;/?:@=&#]*&)?v=([a-zA-Z0-9_\-]+)`),
		render: func(_ string, groups []string, _ string) string {
			return fmt.Sprintf(youtubeTemplate, groups[1])
		},
	},
	{
		name:    "twitch-clip",
		pattern: regexp.MustCompile(`^https?://clips\.twitch\.tv/([a-zA-Z0-9_\-]+)`),
		render: func(_ string, groups []string, parent string) string {
			return fmt.Sprintf(`<iframe class="media" src="https://clips.twitch.tv/embed?autoplay=false&clip=%s&parent=%s" `+
				`frameborder="0" allowfullscreen="true" scrolling="no" height="315" width="560"></iframe>`, groups[1], parent)
		},
	},
	{
		name:    "twitch-video",
		pattern: regexp.MustCompile(`^https?://(?:www\.)?twitch\.tv/videos/([0-9a-zA-Z]+)`),
		render: func(_ string, groups []string, parent string) string {
			return fmt.Sprintf(`<iframe class="media" src="https://player.twitch.tv/?autoplay=false&video=v%s&parent=%s" `+
				`frameborder="0" allowfullscreen="true" scrolling="no" height="315" width="560"></iframe>`, groups[1], parent)
		},
	},
	{
		name:    "streamable",
		pattern: regexp.MustCompile(`^https?://streamable\.com/([a-zA-Z0-9]+)`),
		render: func(_ string, groups []string, _ string) string {
			return fmt.Sprintf(`<iframe class="media" src="https://streamable.com/o/%s" `+
				`frameborder="0" scrolling="no" width="560" height="315" allowfullscreen></iframe>`, groups[1])
		},
	},
	{
		name:    "pastebin",
		pattern: regexp.MustCompile(`^https?://pastebin\.com/(?:raw/)?([a-zA-Z0-9]+)$`),
		render: func(_ string, groups []string, _ string) string {
			return fmt.Sprintf(`<iframe class="media" src="https://pastebin.com/embed_iframe/%s" `+
				`style="border:none;width:100%%"></iframe>`, groups[1])
		},
	},
}

// Pages on these hosts need an API lookup to find the underlying media file.
// That lookup is not implemented; their URLs are probed unchanged.
var (
	gyazoPattern  = regexp.MustCompile(`^https?://gyazo\.com/[0-9a-fA-F]+`)
	gfycatPattern = regexp.MustCompile(`^https?://gfycat\.com/[a-zA-Z0-9]+`)
)

// Match resolves url against the tier-1 providers without any network access.
// The parent domain is used by providers that require one; empty means
// DefaultTwitchParent.
func Match(url, parent string) (Embed, bool) {
	if parent == "" {
		parent = DefaultTwitchParent
	}
	for _, p := range providers {
		groups := p.pattern.FindStringSubmatch(url)
		if groups == nil {
			continue
		}
		kind := KindFrame
		if p.name == "imgur" {
			kind = KindImage
		}
		return Embed{Kind: kind, Source: url, Provider: p.name, HTML: p.render(url, groups, parent)}, true
	}
	return Embed{}, false
}

// needsMetadataRewrite reports whether url is a host page whose media file
// can only be found through the host's API.
func needsMetadataRewrite(url string) bool {
	return gyazoPattern.MatchString(url) || gfycatPattern.MatchString(url)
}

// ProbeTarget returns the URL a tier-2 probe should request for url.
// Legacy .gifv links are rewritten to their .mp4 container.
func ProbeTarget(url string) string {
	if strings.HasSuffix(url, ".gifv") {
		return strings.TrimSuffix(url, ".gifv") + ".mp4"
	}
	return url
}

// fromContentType builds an embed for a probed URL based on its content type.
func fromContentType(url, contentType string) (Embed, bool) {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return Embed{Kind: KindImage, Source: url, Provider: "probe", HTML: imageHTML(url)}, true
	case strings.HasPrefix(contentType, "video/"):
		return Embed{Kind: KindVideo, Source: url, Provider: "probe", HTML: videoHTML(url)}, true
	default:
		return Embed{}, false
	}
}

func imageHTML(url string) string {
	return fmt.Sprintf(`<img class="media" src="%s">`, url)
}

func videoHTML(url string) string {
	return fmt.Sprintf(`<video class="media" autoplay loop muted controls><source src="%s"></video>`, url)
}
