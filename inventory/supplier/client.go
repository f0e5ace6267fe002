package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
)

const (
	searchPath           = "/products/search"
	maxListings          = 3
	maxResponseSizeBytes = 2 << 20

	orderStatus = "confirmed"
	orderETA    = "2 days"
)

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://dummyjson.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Option customizes Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client queries the external supplier catalog. It is stateless and
// best-effort; a failed call is reported, never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type searchResponse struct {
	Products []listingPayload `json:"products"`
}

type listingPayload struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("supplier base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid supplier base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...Option) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// Search issues a free-text catalog query and returns at most three
// listings in the order the remote service ranked them. An empty result
// set is a legitimate outcome, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]contractx.SupplierListing, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: empty search query", contractx.ErrSupplierUnreachable)
	}

	endpoint := c.baseURL + searchPath + "?q=" + url.QueryEscape(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build search request: %v", contractx.ErrSupplierUnreachable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrSupplierUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read search response: %v", contractx.ErrSupplierUnreachable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: search status=%d", contractx.ErrSupplierUnreachable, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", contractx.ErrSupplierUnreachable, err)
	}

	listings := make([]contractx.SupplierListing, 0, maxListings)
	for _, p := range parsed.Products {
		if len(listings) == maxListings {
			break
		}
		listings = append(listings, contractx.SupplierListing{
			SupplierID:     p.ID,
			Title:          p.Title,
			UnitPrice:      p.Price,
			AvailableStock: p.Stock,
		})
	}
	return listings, nil
}

// PlaceOrder submits a purchase order. The current supplier contract has
// no ordering endpoint, so this is a deterministic confirmation with a
// fixed two-day ETA. A real supplier integration replaces this body with a
// timeout- and retry-bound network call.
func (c *Client) PlaceOrder(_ context.Context, supplierID int, quantity int) (contractx.OrderReceipt, error) {
	if supplierID <= 0 {
		return contractx.OrderReceipt{}, fmt.Errorf("%w: invalid supplier id %d", contractx.ErrOrderRejected, supplierID)
	}
	if quantity <= 0 {
		return contractx.OrderReceipt{}, fmt.Errorf("%w: invalid quantity %d", contractx.ErrOrderRejected, quantity)
	}

	return contractx.OrderReceipt{
		SupplierID: supplierID,
		Quantity:   quantity,
		Status:     orderStatus,
		ETA:        orderETA,
	}, nil
}
