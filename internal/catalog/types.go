// Package catalog models the storefront commerce backend: products, variants,
// and carts. The backend is an opaque remote API; this package only shapes its
// payloads and never applies pricing or availability rules of its own.
package catalog

import (
	"context"
	"errors"
)

// ErrProductNotFound indicates the requested product handle does not exist.
var ErrProductNotFound = errors.New("catalog: product not found")

// ErrCartNotFound indicates the referenced cart no longer exists upstream.
var ErrCartNotFound = errors.New("catalog: cart not found")

// ErrUnavailable indicates the commerce backend could not fulfil the request.
var ErrUnavailable = errors.New("catalog: backend unavailable")

// Shop carries the storefront identity returned alongside every product fetch.
type Shop struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PrimaryURL  string `json:"primaryUrl,omitempty"`
}

// Money is a decimal amount in a single currency, kept as the backend string to
// avoid re-rounding on our side.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Image describes a product or variant image.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Option is a named axis of product configuration with its ordered values.
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// SelectedOption is one (option name, value) pair on a variant or a request.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is one purchasable combination of option values. SelectedOptions
// holds exactly one pair per product option, in the product's option order.
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title,omitempty"`
	SKU              string           `json:"sku,omitempty"`
	AvailableForSale bool             `json:"availableForSale"`
	Price            Money            `json:"price"`
	CompareAtPrice   *Money           `json:"compareAtPrice,omitempty"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Image            *Image           `json:"image,omitempty"`
}

// Product is immutable for the duration of a request.
type Product struct {
	ID                  string    `json:"id"`
	Handle              string    `json:"handle"`
	Title               string    `json:"title"`
	Vendor              string    `json:"vendor,omitempty"`
	DescriptionMarkdown string    `json:"descriptionMarkdown,omitempty"`
	FeaturedImage       *Image    `json:"featuredImage,omitempty"`
	Options             []Option  `json:"options"`
	Variants            []Variant `json:"variants"`
}

// DefaultVariant returns the backend-ordered first variant, which anchors the
// default-fill rule and the pricing fallback for unmatched selections.
func (p Product) DefaultVariant() *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}

// ProductPage is the primary payload for a product route: shop plus product,
// fetched in one backend round trip.
type ProductPage struct {
	Shop    Shop    `json:"shop"`
	Product Product `json:"product"`
}

// CartLine is a (merchandise, quantity) pair submitted to the cart API.
type CartLine struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// Cart mirrors the backend cart resource. Only the identifier is persisted on
// our side (inside the session cookie).
type Cart struct {
	ID            string     `json:"id"`
	Lines         []CartLine `json:"lines,omitempty"`
	TotalQuantity int        `json:"totalQuantity,omitempty"`
}

// Storefront abstracts the commerce backend. All four calls are opaque,
// possibly-failing remote operations with no retry contract of their own.
type Storefront interface {
	// FetchProduct loads the shop and the product for a handle. The selection
	// is forwarded so the backend can pre-compute a selected variant; callers
	// must not rely on that and re-resolve locally.
	FetchProduct(ctx context.Context, handle string, selection []SelectedOption) (ProductPage, error)

	// FetchRecommended returns related products for a resolved product.
	FetchRecommended(ctx context.Context, productID string) ([]Product, error)

	// CreateCart creates a new cart carrying the given lines.
	CreateCart(ctx context.Context, lines []CartLine) (Cart, error)

	// AddCartLines appends lines to an existing cart.
	AddCartLines(ctx context.Context, cartID string, lines []CartLine) error
}
