package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Fake is an in-memory catalog used when no backend URL is configured and as a
// deterministic collaborator in tests. Cart state lives for the process only.
type Fake struct {
	shop     Shop
	products []Product

	mu    sync.Mutex
	carts map[string][]CartLine
}

var _ Storefront = (*Fake)(nil)

// NewFake builds a fake backend seeded with the demo catalog.
func NewFake() *Fake {
	return &Fake{
		shop:     demoShop(),
		products: demoProducts(),
		carts:    map[string][]CartLine{},
	}
}

// FetchProduct returns the demo product for the handle.
func (f *Fake) FetchProduct(_ context.Context, handle string, _ []SelectedOption) (ProductPage, error) {
	handle = strings.TrimSpace(handle)
	for _, p := range f.products {
		if p.Handle == handle {
			return ProductPage{Shop: f.shop, Product: p}, nil
		}
	}
	return ProductPage{}, fmt.Errorf("%w: %s", ErrProductNotFound, handle)
}

// FetchRecommended returns every other demo product.
func (f *Fake) FetchRecommended(_ context.Context, productID string) ([]Product, error) {
	out := make([]Product, 0, len(f.products))
	for _, p := range f.products {
		if p.ID != productID {
			out = append(out, p)
		}
	}
	return out, nil
}

// CreateCart creates a cart with a fresh identifier.
func (f *Fake) CreateCart(_ context.Context, lines []CartLine) (Cart, error) {
	id := "cart_" + ulid.Make().String()
	f.mu.Lock()
	f.carts[id] = append([]CartLine(nil), lines...)
	f.mu.Unlock()
	return Cart{ID: id, Lines: lines, TotalQuantity: totalQuantity(lines)}, nil
}

// AddCartLines appends lines to a known cart.
func (f *Fake) AddCartLines(_ context.Context, cartID string, lines []CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.carts[cartID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCartNotFound, cartID)
	}
	f.carts[cartID] = append(existing, lines...)
	return nil
}

// CartLines reports the lines currently held by a cart. Test helper.
func (f *Fake) CartLines(cartID string) ([]CartLine, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines, ok := f.carts[cartID]
	if !ok {
		return nil, false
	}
	return append([]CartLine(nil), lines...), true
}

func totalQuantity(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

func demoShop() Shop {
	return Shop{
		Name:        "Hanko Field",
		Description: "Hand-finished seals for bilingual paperwork.",
		PrimaryURL:  "https://hanko-field.example",
	}
}

func demoProducts() []Product {
	jpy := func(amount string) Money { return Money{Amount: amount, CurrencyCode: "JPY"} }

	classic := Product{
		ID:     "prod_classic_round",
		Handle: "classic-round-hanko",
		Title:  "Classic Round Hanko",
		Vendor: "Hanko Field",
		DescriptionMarkdown: "Hand-carved personal seal in **tensho** script.\n\n" +
			"- Registrable sizing for jitsuin use\n" +
			"- Ships with a plain paulownia case",
		FeaturedImage: &Image{URL: "https://cdn.hanko-field.example/classic-round.jpg", AltText: "Classic round hanko"},
		Options: []Option{
			{Name: "Material", Values: []string{"Boxwood", "Buffalo Horn"}},
			{Name: "Diameter", Values: []string{"10.5mm", "13.5mm"}},
			// single-value option: excluded from choices, still matched
			{Name: "Script", Values: []string{"Tensho"}},
		},
	}
	prices := map[string]Money{
		"Boxwood":      jpy("5800"),
		"Buffalo Horn": jpy("9800"),
	}
	for _, material := range classic.Options[0].Values {
		for _, diameter := range classic.Options[1].Values {
			slug := strings.ToLower(strings.ReplaceAll(material+"-"+diameter, " ", "-"))
			classic.Variants = append(classic.Variants, Variant{
				ID:               "var_classic_" + slug,
				Title:            material + " / " + diameter,
				SKU:              "CLS-" + slug,
				AvailableForSale: true,
				Price:            prices[material],
				SelectedOptions: []SelectedOption{
					{Name: "Material", Value: material},
					{Name: "Diameter", Value: diameter},
					{Name: "Script", Value: "Tensho"},
				},
			})
		}
	}

	inkpad := Product{
		ID:                  "prod_vermilion_pad",
		Handle:              "vermilion-ink-pad",
		Title:               "Vermilion Ink Pad",
		Vendor:              "Hanko Field",
		DescriptionMarkdown: "Slow-drying shuniku pad sized for daily desk use.",
		FeaturedImage:       &Image{URL: "https://cdn.hanko-field.example/ink-pad.jpg", AltText: "Vermilion ink pad"},
		Options: []Option{
			{Name: "Size", Values: []string{"Small", "Large"}},
		},
		Variants: []Variant{
			{
				ID: "var_pad_small", Title: "Small", SKU: "PAD-S", AvailableForSale: true,
				Price:           jpy("1200"),
				SelectedOptions: []SelectedOption{{Name: "Size", Value: "Small"}},
			},
			{
				ID: "var_pad_large", Title: "Large", SKU: "PAD-L", AvailableForSale: false,
				Price:           jpy("2400"),
				CompareAtPrice:  &Money{Amount: "2800", CurrencyCode: "JPY"},
				SelectedOptions: []SelectedOption{{Name: "Size", Value: "Large"}},
			},
		},
	}

	return []Product{classic, inkpad}
}
