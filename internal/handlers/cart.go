package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/hanko-store/internal/catalog"
	"finitefield.org/hanko-store/internal/httpx"
	"finitefield.org/hanko-store/internal/middleware"
	"finitefield.org/hanko-store/internal/selection"
)

var errMissingVariant = errors.New("variantId is required")

// cartLineIntent is the submitted add-to-cart form, alive for one invocation.
type cartLineIntent struct {
	VariantID string
	Quantity  int
}

// addToCart runs the cart session transaction:
//
//	no cart in session  -> create a cart with the line, store the returned id
//	                       in the session (committed as a Set-Cookie header)
//	cart id in session  -> append the line to the existing cart, no session write
//
// Both branches finish with a 302 back to the originating product page. A
// failed backend call fails the action outright; the session is left untouched
// in the create branch so a retry re-enters the same state. Two concurrent
// first-time submissions can create two independent carts; the backend owns
// that race and this layer does not deduplicate.
func (h *ProductHandlers) addToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handle := strings.TrimSpace(chi.URLParam(r, "handle"))
	if handle == "" {
		httpx.WriteError(ctx, w, httpx.NewError("missing_handle", "product handle is required", http.StatusBadRequest))
		return
	}

	sess := middleware.GetSession(r)

	// entry reads fan out: the form body parse and the session cart read join
	// before the single backend call
	var (
		intent cartLineIntent
		cartID string
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		parsed, err := parseCartForm(r)
		if err != nil {
			return err
		}
		intent = parsed
		return nil
	})
	g.Go(func() error {
		cartID = strings.TrimSpace(sess.CartID)
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, errMissingVariant) {
			httpx.WriteError(ctx, w, httpx.NewError("missing_variant", errMissingVariant.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_form", err.Error(), http.StatusBadRequest))
		return
	}

	lines := []catalog.CartLine{{MerchandiseID: intent.VariantID, Quantity: intent.Quantity}}

	if cartID == "" {
		cart, err := h.store.CreateCart(ctx, lines)
		if err != nil {
			h.writeCartError(w, r, err)
			return
		}
		// the only session mutation in either branch; committed as Set-Cookie
		// by the session middleware before the redirect headers flush
		sess.SetCartID(cart.ID)
		h.logger.Info("cart created",
			zap.String("cart_id", cart.ID),
			zap.String("variant_id", intent.VariantID),
		)
	} else {
		if err := h.store.AddCartLines(ctx, cartID, lines); err != nil {
			h.writeCartError(w, r, err)
			return
		}
		h.logger.Info("cart line added",
			zap.String("cart_id", cartID),
			zap.String("variant_id", intent.VariantID),
		)
	}

	links := h.linkBuilder(middleware.LocaleFromContext(ctx))
	target := links.ProductURL("/products/"+handle, selection.DecodeQuery(r.URL.RawQuery))
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *ProductHandlers) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	h.logger.Error("cart mutation failed", zap.Error(err))
	switch {
	case errors.Is(err, catalog.ErrCartNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("cart_not_found", "cart no longer exists", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_mutation_failed", "cart request failed", http.StatusBadGateway))
	}
}

func parseCartForm(r *http.Request) (cartLineIntent, error) {
	if err := r.ParseForm(); err != nil {
		return cartLineIntent{}, err
	}
	variantID := strings.TrimSpace(r.PostForm.Get("variantId"))
	if variantID == "" {
		return cartLineIntent{}, errMissingVariant
	}
	quantity := 1
	if raw := strings.TrimSpace(r.PostForm.Get("quantity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return cartLineIntent{}, errors.New("quantity must be a positive integer")
		}
		quantity = n
	}
	return cartLineIntent{VariantID: variantID, Quantity: quantity}, nil
}
