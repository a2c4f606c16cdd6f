// Package amadeus is a client for the Amadeus Self-Service flight APIs:
// offer search, price confirmation, order creation and order lookup.
package amadeus

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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/FeelPulse/flightpulse/internal/logger"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

const (
	component = "amadeus"

	tokenPath   = "/v1/security/oauth2/token"
	searchPath  = "/v2/shopping/flight-offers"
	pricingPath = "/v1/shopping/flight-offers/pricing"
	ordersPath  = "/v1/booking/flight-orders"
)

// Gateway is the set of vendor calls the booking flow depends on
type Gateway interface {
	Search(ctx context.Context, params *types.SearchParams) ([]types.Offer, error)
	Price(ctx context.Context, offer types.Offer) (types.Offer, error)
	Book(ctx context.Context, offer types.Offer, travelers []types.Traveler, contact types.Contact) (*Order, error)
	Lookup(ctx context.Context, reference string) (*Order, error)
}

// Config holds the client settings
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
	MaxOffers    int
}

// Client talks to the vendor over HTTPS. The OAuth2 token is fetched on
// first use and refreshed by the transport when it expires.
type Client struct {
	baseURL   string
	maxOffers int
	http      *http.Client
	log       *logger.Logger
}

var _ Gateway = (*Client)(nil)

// New creates a client using the client-credentials grant
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
	httpClient := cc.Client(tokenCtx)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:   base,
		maxOffers: cfg.MaxOffers,
		http:      httpClient,
		log:       logger.Component(component),
	}
}

// logFor returns the request's logger from ctx under this client's component
func (c *Client) logFor(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx, c.log).WithComponent(component)
}

// do sends a request and decodes a 2xx JSON body into out.
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.logFor(ctx).Debug("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		var wrapper struct {
			Errors []ErrorItem `json:"errors"`
		}
		if json.Unmarshal(respBody, &wrapper) == nil {
			apiErr.Errors = wrapper.Errors
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
