// Package handlers exposes the product route: page data on GET, the
// add-to-cart transaction on POST.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/hanko-store/internal/catalog"
	"finitefield.org/hanko-store/internal/deferred"
	"finitefield.org/hanko-store/internal/httpx"
	"finitefield.org/hanko-store/internal/i18n"
	"finitefield.org/hanko-store/internal/middleware"
	"finitefield.org/hanko-store/internal/selection"
)

const recommendationsPanel = "recommendations"

// ProductHandlers serves the product detail route.
type ProductHandlers struct {
	store   catalog.Storefront
	bundle  *i18n.Bundle
	logger  *zap.Logger
	locales []string
}

// NewProductHandlers wires the storefront backend and locale bundle. locales
// lists the path-embeddable locale prefixes used when building option links.
func NewProductHandlers(store catalog.Storefront, bundle *i18n.Bundle, locales []string, logger *zap.Logger) *ProductHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandlers{store: store, bundle: bundle, logger: logger, locales: locales}
}

// Routes wires the product endpoints onto the provided router.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products/{handle}", h.getProduct)
	r.Post("/products/{handle}", h.addToCart)
}

// getProduct streams the page payload as NDJSON: the primary record first,
// then the recommendations panel once its independent fetch settles. A failed
// panel fetch degrades to an inline error record, never a failed page.
func (h *ProductHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handle := strings.TrimSpace(chi.URLParam(r, "handle"))
	if handle == "" {
		httpx.WriteError(ctx, w, httpx.NewError("missing_handle", "product handle is required", http.StatusBadRequest))
		return
	}

	// The committed URL is the selection source of truth on the server; the
	// pending-navigation overlay projection applies before commit, on the
	// rendering side.
	params := selection.DisplaySelection(selection.Idle(), r.URL)

	page, err := h.store.FetchProduct(ctx, handle, requestedOptions(params))
	if err != nil {
		h.writeStorefrontError(w, r, err)
		return
	}

	// started only once the product resolved, keyed by its ID; never awaited
	// before the primary payload goes out
	productID := page.Product.ID
	recs := deferred.Start(ctx, func(ctx context.Context) ([]catalog.Product, error) {
		return h.store.FetchRecommended(ctx, productID)
	})

	lang := middleware.Lang(r)
	locale := middleware.LocaleFromContext(ctx)
	links := h.linkBuilder(locale)
	res := selection.Resolve(page.Product, params)
	productPath := "/products/" + page.Product.Handle

	view := productPageView{
		Shop:      page.Shop,
		Product:   buildProductView(page.Product, res, links, productPath),
		Canonical: links.ProductURL(productPath, res.Selection),
		Labels: labelsView{
			AddToCart: h.bundle.T(lang, "product.add_to_cart"),
			SoldOut:   h.bundle.T(lang, "product.sold_out"),
		},
	}

	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	enc := json.NewEncoder(w)
	if err := enc.Encode(view); err != nil {
		return
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	// second record: the deferred panel, resolved out of band
	panel := recommendationsView{Panel: recommendationsPanel}
	products, err := recs.Wait(ctx)
	if err != nil {
		h.logger.Warn("recommendations fetch failed",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		panel.Error = h.bundle.T(lang, "product.recommendations_unavailable")
	} else {
		panel.Products = make([]productCard, 0, len(products))
		for _, p := range products {
			panel.Products = append(panel.Products, buildProductCard(p, links))
		}
	}
	_ = enc.Encode(panel)
}

func (h *ProductHandlers) linkBuilder(locale middleware.LocaleInfo) selection.LinkBuilder {
	b := selection.LinkBuilder{Locales: h.locales}
	if locale.PathEmbedded {
		b.Active = locale.Lang
	}
	return b
}

func (h *ProductHandlers) writeStorefrontError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	default:
		h.logger.Error("storefront fetch failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("storefront_unavailable", "commerce backend request failed", http.StatusBadGateway))
	}
}

func requestedOptions(params selection.Params) []catalog.SelectedOption {
	pairs := params.Pairs()
	out := make([]catalog.SelectedOption, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, catalog.SelectedOption{Name: p.Name, Value: p.Value})
	}
	return out
}
