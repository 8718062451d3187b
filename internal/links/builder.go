// Package links builds storefront search URLs for a free-text game query.
package links

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// Template describes one storefront search page. Pattern holds a single
// Placeholder that receives the form-encoded query. Any other text, including
// percent-encoded literals, is copied verbatim.
type Template struct {
	Key     string
	Name    string
	Pattern string
}

// Link is a rendered storefront URL.
type Link struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Links keeps the storefront order of the templates that produced it.
type Links []Link

// URL returns the link for key.
func (l Links) URL(key string) (string, bool) {
	link, ok := lo.Find(l, func(item Link) bool { return item.Key == key })
	return link.URL, ok
}

// Map returns storefront name → URL.
func (l Links) Map() map[string]string {
	return lo.SliceToMap(l, func(item Link) (string, string) { return item.Name, item.URL })
}

// Placeholder marks where the encoded query goes in a Template pattern.
const Placeholder = "%s"

// Storefront keys of the default templates.
const (
	Eneba         = "eneba"
	InstantGaming = "instant-gaming"
	Steam         = "steam"
	SteamPacks    = "steam-packs"
	HumbleBundle  = "humble"
	Fanatical     = "fanatical"
)

var defaultTemplates = []Template{
	{Key: Eneba, Name: "Eneba", Pattern: "https://www.eneba.com/store/all?text=%s&regions[]=europe&regions[]=global"},
	{Key: InstantGaming, Name: "Instant Gaming", Pattern: "https://www.instant-gaming.com/pt/pesquisar/?query=%s"},
	{Key: Steam, Name: "Steam", Pattern: "https://store.steampowered.com/search/?term=%s&cc=pt"},
	// category1=996 restricts Steam results to packages.
	{Key: SteamPacks, Name: "Steam Packs", Pattern: "https://store.steampowered.com/search/?term=%s&category1=996"},
	{Key: HumbleBundle, Name: "Humble Bundle", Pattern: "https://www.humblebundle.com/store/search?sort=bestselling&search=%s"},
	{Key: Fanatical, Name: "Fanatical", Pattern: "https://www.fanatical.com/en/search?search=%s"},
}

// DefaultTemplates returns a copy of the built-in storefront templates.
func DefaultTemplates() []Template {
	return append([]Template(nil), defaultTemplates...)
}

// Builder renders storefront links from a fixed template set.
type Builder struct {
	templates []Template
}

// NewBuilder validates and copies templates.
func NewBuilder(templates []Template) (*Builder, error) {
	seen := make(map[string]struct{}, len(templates))
	for _, tpl := range templates {
		if tpl.Key == "" || tpl.Name == "" {
			return nil, fmt.Errorf("link template requires key and name: %+v", tpl)
		}
		if strings.Count(tpl.Pattern, Placeholder) != 1 {
			return nil, fmt.Errorf("link template %q must contain exactly one %s", tpl.Key, Placeholder)
		}
		if _, dup := seen[tpl.Key]; dup {
			return nil, fmt.Errorf("duplicate link template %q", tpl.Key)
		}
		seen[tpl.Key] = struct{}{}
	}
	return &Builder{templates: append([]Template(nil), templates...)}, nil
}

// Default returns a Builder over DefaultTemplates.
func Default() *Builder {
	return &Builder{templates: DefaultTemplates()}
}

// Build renders one link per template. Whitespace-only queries yield no
// links; any other query is encoded exactly as given.
func (b *Builder) Build(query string) Links {
	if Blank(query) {
		return nil
	}

	encoded := url.QueryEscape(query)
	return lo.Map(b.templates, func(tpl Template, _ int) Link {
		return Link{
			Key:  tpl.Key,
			Name: tpl.Name,
			URL:  strings.Replace(tpl.Pattern, Placeholder, encoded, 1),
		}
	})
}

// Blank reports whether query has nothing but whitespace.
func Blank(query string) bool {
	return strings.TrimSpace(query) == ""
}
