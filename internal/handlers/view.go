package handlers

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"finitefield.org/hanko-store/internal/catalog"
	"finitefield.org/hanko-store/internal/selection"
)

// productPageView is the primary NDJSON record for the product route.
type productPageView struct {
	Shop      catalog.Shop `json:"shop"`
	Product   productView  `json:"product"`
	Canonical string       `json:"canonicalUrl"`
	Labels    labelsView   `json:"labels"`
}

type labelsView struct {
	AddToCart string `json:"addToCart"`
	SoldOut   string `json:"soldOut"`
}

type productView struct {
	ID              string            `json:"id"`
	Handle          string            `json:"handle"`
	Title           string            `json:"title"`
	Vendor          string            `json:"vendor,omitempty"`
	DescriptionHTML string            `json:"descriptionHtml,omitempty"`
	FeaturedImage   *catalog.Image    `json:"featuredImage,omitempty"`
	Matched         bool              `json:"matched"`
	SelectedVariant *variantView      `json:"selectedVariant,omitempty"`
	Options         []optionGroupView `json:"options"`
	Selection       []selection.Pair  `json:"selection"`
}

type variantView struct {
	ID               string         `json:"id"`
	Title            string         `json:"title,omitempty"`
	SKU              string         `json:"sku,omitempty"`
	AvailableForSale bool           `json:"availableForSale"`
	Price            catalog.Money  `json:"price"`
	CompareAtPrice   *catalog.Money `json:"compareAtPrice,omitempty"`
	Image            *catalog.Image `json:"image,omitempty"`
}

type optionGroupView struct {
	Name   string            `json:"name"`
	Values []optionValueView `json:"values"`
}

type optionValueView struct {
	Value string         `json:"value"`
	Link  selection.Link `json:"link"`
}

// recommendationsView is the deferred NDJSON record for the related panel.
type recommendationsView struct {
	Panel    string        `json:"panel"`
	Products []productCard `json:"products,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type productCard struct {
	ID            string         `json:"id"`
	Handle        string         `json:"handle"`
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	FeaturedImage *catalog.Image `json:"featuredImage,omitempty"`
	Price         *catalog.Money `json:"price,omitempty"`
}

var descriptionPolicy = bluemonday.UGCPolicy()

var descriptionMarkdown = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// renderDescription converts the backend markdown description into sanitized
// HTML safe to embed in the page payload.
func renderDescription(markdown string) string {
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(markdown), &buf); err != nil {
		// fall back to the sanitized raw text rather than failing the page
		return descriptionPolicy.Sanitize(markdown)
	}
	return descriptionPolicy.Sanitize(buf.String())
}

// buildProductView assembles the page payload for a resolved product. The
// variant link set is derived from the filled-in selection so an unmatched
// explicit choice stays visible in every generated URL.
func buildProductView(p catalog.Product, res selection.Resolution, links selection.LinkBuilder, productPath string) productView {
	view := productView{
		ID:              p.ID,
		Handle:          p.Handle,
		Title:           p.Title,
		Vendor:          p.Vendor,
		DescriptionHTML: renderDescription(p.DescriptionMarkdown),
		FeaturedImage:   p.FeaturedImage,
		Matched:         res.Variant != nil,
		Selection:       res.Selection.Pairs(),
	}

	if v := res.EffectiveVariant(p); v != nil {
		view.SelectedVariant = &variantView{
			ID:               v.ID,
			Title:            v.Title,
			SKU:              v.SKU,
			AvailableForSale: v.AvailableForSale && res.Variant != nil,
			Price:            v.Price,
			CompareAtPrice:   v.CompareAtPrice,
			Image:            v.Image,
		}
	}

	for _, opt := range selection.SelectableOptions(p) {
		group := optionGroupView{Name: opt.Name}
		for _, value := range opt.Values {
			group.Values = append(group.Values, optionValueView{
				Value: value,
				Link:  links.OptionLink(productPath, res.Selection, opt.Name, value),
			})
		}
		view.Options = append(view.Options, group)
	}
	return view
}

func buildProductCard(p catalog.Product, links selection.LinkBuilder) productCard {
	card := productCard{
		ID:            p.ID,
		Handle:        p.Handle,
		Title:         p.Title,
		URL:           links.ProductURL("/products/"+p.Handle, selection.Params{}),
		FeaturedImage: p.FeaturedImage,
	}
	if v := p.DefaultVariant(); v != nil {
		price := v.Price
		card.Price = &price
	}
	return card
}
