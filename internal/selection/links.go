package selection

import (
	"strings"
)

// PrefetchIntent marks a link for pre-fetch when the user shows intent (hover
// or focus). A rendering hint, not a correctness requirement.
const PrefetchIntent = "intent"

// Link is a destination for selecting one option value, ready for rendering.
type Link struct {
	URL      string `json:"url"`
	Prefetch string `json:"prefetch"`
	Active   bool   `json:"active"`
}

// LinkBuilder produces canonical destination URLs for option choices. Locales
// lists the path-embeddable locale prefixes; Active is the prefix to re-apply,
// empty when the current request carries none.
type LinkBuilder struct {
	Locales []string
	Active  string
}

// OptionLink builds the destination for "select value for option" from the
// current product path and filled-in selection. Only the targeted option is
// overwritten; every other parameter is serialised unchanged. Clicking the
// link for the already-active value re-navigates to the same variant.
func (b LinkBuilder) OptionLink(productPath string, sel Params, option, value string) Link {
	next := sel.With(option, value)
	current, _ := sel.Get(option)
	return Link{
		URL:      b.ProductURL(productPath, next),
		Prefetch: PrefetchIntent,
		Active:   current == value,
	}
}

// ProductURL builds the canonical URL for a product path plus selection,
// re-applying the active locale prefix.
func (b LinkBuilder) ProductURL(productPath string, sel Params) string {
	path := b.StripLocale(productPath)
	if b.Active != "" {
		path = "/" + b.Active + path
	}
	if q := sel.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

// StripLocale removes a leading locale path segment when present, so links
// remain correct regardless of whether the locale is path-embedded.
func (b LinkBuilder) StripLocale(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	rest := strings.TrimPrefix(path, "/")
	seg, tail, _ := strings.Cut(rest, "/")
	for _, locale := range b.Locales {
		if strings.EqualFold(seg, locale) {
			if tail == "" {
				return "/"
			}
			return "/" + tail
		}
	}
	return path
}
