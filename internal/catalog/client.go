package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
	accessTokenHeader = "X-Storefront-Access-Token"
)

// Client issues product and cart calls against the commerce backend.
// When baseURL is empty, the client serves data from the built-in fake catalog.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	fake    *Fake
}

var _ Storefront = (*Client)(nil)

// ClientOption customises the constructed client.
type ClientOption func(*Client)

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithAccessToken attaches the storefront access token to every call.
func WithAccessToken(token string) ClientOption {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// NewClient constructs a backend client. When baseURL is empty, all calls are
// answered by an in-memory demo catalog so the server runs standalone.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.fake = NewFake()
	}
	return c
}

// FetchProduct loads the shop and product for a handle in one round trip.
func (c *Client) FetchProduct(ctx context.Context, handle string, selection []SelectedOption) (ProductPage, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ProductPage{}, fmt.Errorf("%w: empty handle", ErrProductNotFound)
	}
	if c == nil || c.baseURL == "" {
		return c.fake.FetchProduct(ctx, handle, selection)
	}

	endpoint, err := url.JoinPath(c.baseURL, "products", handle)
	if err != nil {
		return ProductPage{}, err
	}
	q := url.Values{}
	for _, opt := range selection {
		q.Add("selected", opt.Name+":"+opt.Value)
	}
	if len(q) > 0 {
		endpoint = endpoint + "?" + q.Encode()
	}

	var page ProductPage
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return ProductPage{}, err
	}
	return page, nil
}

// FetchRecommended returns related products for a product identifier.
func (c *Client) FetchRecommended(ctx context.Context, productID string) ([]Product, error) {
	if c == nil || c.baseURL == "" {
		return c.fake.FetchRecommended(ctx, productID)
	}

	endpoint, err := url.JoinPath(c.baseURL, "products", productID, "recommendations")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// CreateCart creates a new cart carrying the submitted lines.
func (c *Client) CreateCart(ctx context.Context, lines []CartLine) (Cart, error) {
	if c == nil || c.baseURL == "" {
		return c.fake.CreateCart(ctx, lines)
	}

	endpoint, err := url.JoinPath(c.baseURL, "carts")
	if err != nil {
		return Cart{}, err
	}
	var cart Cart
	if err := c.postJSON(ctx, endpoint, map[string]any{"lines": lines}, &cart); err != nil {
		return Cart{}, err
	}
	if strings.TrimSpace(cart.ID) == "" {
		return Cart{}, fmt.Errorf("%w: create cart returned no id", ErrUnavailable)
	}
	return cart, nil
}

// AddCartLines appends lines to an existing cart.
func (c *Client) AddCartLines(ctx context.Context, cartID string, lines []CartLine) error {
	if c == nil || c.baseURL == "" {
		return c.fake.AddCartLines(ctx, cartID, lines)
	}

	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return fmt.Errorf("%w: empty cart id", ErrCartNotFound)
	}
	endpoint, err := url.JoinPath(c.baseURL, "carts", cartID, "lines")
	if err != nil {
		return err
	}
	return c.postJSON(ctx, endpoint, map[string]any{"lines": lines}, nil)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(accessTokenHeader, c.token)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(idempotencyHeader, "cart_"+ulid.Make().String())
	if c.token != "" {
		req.Header.Set(accessTokenHeader, c.token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		if strings.Contains(req.URL.Path, "/carts/") {
			return fmt.Errorf("%w: %s", ErrCartNotFound, req.URL.Path)
		}
		return fmt.Errorf("%w: %s", ErrProductNotFound, req.URL.Path)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, drainError(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
