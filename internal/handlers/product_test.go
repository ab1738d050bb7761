package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"finitefield.org/hanko-store/internal/catalog"
	"finitefield.org/hanko-store/internal/i18n"
)

// stubStorefront lets each test pin down exactly the backend calls it expects.
type stubStorefront struct {
	fetchProduct     func(ctx context.Context, handle string, selection []catalog.SelectedOption) (catalog.ProductPage, error)
	fetchRecommended func(ctx context.Context, productID string) ([]catalog.Product, error)
	createCart       func(ctx context.Context, lines []catalog.CartLine) (catalog.Cart, error)
	addCartLines     func(ctx context.Context, cartID string, lines []catalog.CartLine) error
}

func (s *stubStorefront) FetchProduct(ctx context.Context, handle string, selection []catalog.SelectedOption) (catalog.ProductPage, error) {
	if s.fetchProduct == nil {
		return catalog.ProductPage{}, catalog.ErrProductNotFound
	}
	return s.fetchProduct(ctx, handle, selection)
}

func (s *stubStorefront) FetchRecommended(ctx context.Context, productID string) ([]catalog.Product, error) {
	if s.fetchRecommended == nil {
		return nil, nil
	}
	return s.fetchRecommended(ctx, productID)
}

func (s *stubStorefront) CreateCart(ctx context.Context, lines []catalog.CartLine) (catalog.Cart, error) {
	if s.createCart == nil {
		return catalog.Cart{}, catalog.ErrUnavailable
	}
	return s.createCart(ctx, lines)
}

func (s *stubStorefront) AddCartLines(ctx context.Context, cartID string, lines []catalog.CartLine) error {
	if s.addCartLines == nil {
		return catalog.ErrUnavailable
	}
	return s.addCartLines(ctx, cartID, lines)
}

func testLabels() *i18n.Bundle {
	return i18n.NewStatic("ja", map[string]map[string]string{
		"ja": {
			"product.add_to_cart":                 "カートに入れる",
			"product.sold_out":                    "売り切れ",
			"product.recommendations_unavailable": "おすすめを読み込めませんでした",
		},
	})
}

func shirtPage() catalog.ProductPage {
	variant := func(color, size string, available bool) catalog.Variant {
		return catalog.Variant{
			ID:               "var_" + color + "_" + size,
			AvailableForSale: available,
			Price:            catalog.Money{Amount: "1000", CurrencyCode: "JPY"},
			SelectedOptions: []catalog.SelectedOption{
				{Name: "Color", Value: color},
				{Name: "Size", Value: size},
			},
		}
	}
	return catalog.ProductPage{
		Shop: catalog.Shop{Name: "Hanko Field"},
		Product: catalog.Product{
			ID:                  "prod_shirt",
			Handle:              "shirt",
			Title:               "Shirt",
			DescriptionMarkdown: "A **plain** shirt.",
			Options: []catalog.Option{
				{Name: "Color", Values: []string{"Red", "Blue"}},
				{Name: "Size", Values: []string{"S", "M"}},
				{Name: "Cut", Values: []string{"Regular"}},
			},
			Variants: []catalog.Variant{
				func() catalog.Variant {
					v := variant("Red", "S", true)
					v.SelectedOptions = append(v.SelectedOptions, catalog.SelectedOption{Name: "Cut", Value: "Regular"})
					return v
				}(),
				func() catalog.Variant {
					v := variant("Blue", "S", false)
					v.SelectedOptions = append(v.SelectedOptions, catalog.SelectedOption{Name: "Cut", Value: "Regular"})
					return v
				}(),
			},
		},
	}
}

func productRouter(store catalog.Storefront) *chi.Mux {
	r := chi.NewRouter()
	NewProductHandlers(store, testLabels(), []string{"ja", "en"}, nil).Routes(r)
	return r
}

func decodeRecords(t *testing.T, rec *httptest.ResponseRecorder) (map[string]any, map[string]any) {
	t.Helper()
	dec := json.NewDecoder(rec.Body)
	var first, second map[string]any
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("decode primary record: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("decode panel record: %v", err)
	}
	return first, second
}

func TestGetProductStreamsPageThenRecommendations(t *testing.T) {
	store := &stubStorefront{
		fetchProduct: func(_ context.Context, handle string, _ []catalog.SelectedOption) (catalog.ProductPage, error) {
			if handle != "shirt" {
				t.Errorf("unexpected handle %q", handle)
			}
			return shirtPage(), nil
		},
		fetchRecommended: func(_ context.Context, productID string) ([]catalog.Product, error) {
			if productID != "prod_shirt" {
				t.Errorf("unexpected product id %q", productID)
			}
			return []catalog.Product{{ID: "prod_pad", Handle: "ink-pad", Title: "Ink Pad"}}, nil
		},
	}

	rec := httptest.NewRecorder()
	productRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/shirt", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}

	first, second := decodeRecords(t, rec)
	product := first["product"].(map[string]any)
	if product["id"] != "prod_shirt" {
		t.Fatalf("unexpected product record %v", product)
	}
	if first["canonicalUrl"] != "/products/shirt?Color=Red&Size=S&Cut=Regular" {
		t.Fatalf("unexpected canonical %v", first["canonicalUrl"])
	}
	if second["panel"] != "recommendations" {
		t.Fatalf("unexpected panel record %v", second)
	}
	cards := second["products"].([]any)
	if len(cards) != 1 || cards[0].(map[string]any)["handle"] != "ink-pad" {
		t.Fatalf("unexpected recommendation cards %v", cards)
	}
}

func TestGetProductResolvesSelectionFromQuery(t *testing.T) {
	store := &stubStorefront{
		fetchProduct: func(_ context.Context, _ string, sel []catalog.SelectedOption) (catalog.ProductPage, error) {
			if len(sel) != 1 || sel[0].Name != "Color" || sel[0].Value != "Blue" {
				t.Errorf("unexpected forwarded selection %v", sel)
			}
			return shirtPage(), nil
		},
	}

	rec := httptest.NewRecorder()
	productRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/shirt?Color=Blue", nil))

	first, _ := decodeRecords(t, rec)
	product := first["product"].(map[string]any)
	if product["matched"] != true {
		t.Fatalf("expected Blue/S to match")
	}
	sv := product["selectedVariant"].(map[string]any)
	if sv["id"] != "var_Blue_S" {
		t.Fatalf("unexpected variant %v", sv)
	}
	// the Blue/S variant exists but is sold out
	if sv["availableForSale"] != false {
		t.Fatalf("expected sold-out variant, got %v", sv)
	}

	// single-value Cut option never becomes a choice group
	options := product["options"].([]any)
	if len(options) != 2 {
		t.Fatalf("expected 2 selectable option groups, got %d", len(options))
	}
	blue := options[0].(map[string]any)["values"].([]any)[1].(map[string]any)
	link := blue["link"].(map[string]any)
	if link["url"] != "/products/shirt?Color=Blue&Size=S&Cut=Regular" {
		t.Fatalf("unexpected option link %v", link)
	}
	if link["prefetch"] != "intent" || link["active"] != true {
		t.Fatalf("unexpected link metadata %v", link)
	}
}

func TestGetProductUnmatchedSelectionDegrades(t *testing.T) {
	store := &stubStorefront{
		fetchProduct: func(_ context.Context, _ string, _ []catalog.SelectedOption) (catalog.ProductPage, error) {
			return shirtPage(), nil
		},
	}

	rec := httptest.NewRecorder()
	productRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/shirt?Color=Green", nil))

	first, _ := decodeRecords(t, rec)
	product := first["product"].(map[string]any)
	if product["matched"] != false {
		t.Fatalf("expected unmatched selection")
	}
	sv := product["selectedVariant"].(map[string]any)
	if sv["id"] != "var_Red_S" {
		t.Fatalf("expected default variant fallback, got %v", sv)
	}
	// fallback display never claims purchasability
	if sv["availableForSale"] != false {
		t.Fatalf("expected fallback marked unavailable, got %v", sv)
	}
	// the explicit Green choice survives into generated links
	if first["canonicalUrl"] != "/products/shirt?Color=Green&Size=S&Cut=Regular" {
		t.Fatalf("unexpected canonical %v", first["canonicalUrl"])
	}
}

func TestGetProductNotFound(t *testing.T) {
	store := &stubStorefront{
		fetchProduct: func(_ context.Context, _ string, _ []catalog.SelectedOption) (catalog.ProductPage, error) {
			return catalog.ProductPage{}, catalog.ErrProductNotFound
		},
	}

	rec := httptest.NewRecorder()
	productRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if body.Error != "product_not_found" {
		t.Fatalf("unexpected error code %q", body.Error)
	}
}

func TestGetProductBackendFailure(t *testing.T) {
	store := &stubStorefront{
		fetchProduct: func(_ context.Context, _ string, _ []catalog.SelectedOption) (catalog.ProductPage, error) {
			return catalog.ProductPage{}, catalog.ErrUnavailable
		},
	}

	rec := httptest.NewRecorder()
	productRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/shirt", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestGetProductRecommendationFailureIsContained(t *testing.T) {
	store := &stubStorefront{
		fetchProduct: func(_ context.Context, _ string, _ []catalog.SelectedOption) (catalog.ProductPage, error) {
			return shirtPage(), nil
		},
		fetchRecommended: func(_ context.Context, _ string) ([]catalog.Product, error) {
			return nil, errors.New("recommendation service down")
		},
	}

	rec := httptest.NewRecorder()
	productRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/shirt", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("panel failure leaked into page status %d", rec.Code)
	}
	first, second := decodeRecords(t, rec)
	if first["product"] == nil {
		t.Fatalf("primary record missing")
	}
	if second["error"] != "おすすめを読み込めませんでした" {
		t.Fatalf("expected localized panel error, got %v", second["error"])
	}
	if _, ok := second["products"]; ok {
		t.Fatalf("failed panel must not carry products")
	}
}

func TestRenderDescriptionSanitizes(t *testing.T) {
	html := renderDescription("**bold** <script>alert(1)</script>")
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Fatalf("markdown not rendered: %q", html)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("script tag survived sanitization: %q", html)
	}
}
