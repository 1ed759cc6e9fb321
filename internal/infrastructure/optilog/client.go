// Package optilog implements the outbound HTTP client for the Optilog
// provider API: a thin envelope-aware wrapper plus typed order and product
// operations built on it.
package optilog

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

	"go.uber.org/zap"

	"github.com/erp/optilog-connector/internal/domain/shared"
)

const (
	// maxResponseSize limits the response body size to prevent memory
	// exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response

	// authHeader carries the shared secret on outbound calls, mirroring
	// the header the provider uses when calling us
	authHeader = "Clef"

	ordersPath   = "/v2/commandes"
	productsPath = "/v2/articles"
	pingPath     = "/v2/ping"
)

// benignPhrases lists the provider status messages that do not indicate a
// real failure. Each entry is matched as lowercase substring parts that must
// all be present, which survives the provider's inconsistent punctuation and
// casing. Known fragility: a genuinely failing message containing all parts
// of an entry would be misread as benign.
var benignPhrases = [][]string{
	{"aucune", "modification"},
	{"aucun", "changement"},
	{"commande", "inconnue"},
	{"article", "inconnu"},
	{"déjà", "existant"},
	{"déjà", "validée"},
}

// Config holds the provider API connection settings
type Config struct {
	BaseURL string
	APIKey  string
	// Extended selects the extended API variant that returns parcel
	// details with orders
	Extended bool
	Timeout  time.Duration
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("optilog: base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("optilog: invalid base_url: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("optilog: timeout must be positive")
	}
	return nil
}

// Client talks to the provider API. All methods treat a non-success
// envelope as an error unless its message is recognized as benign.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a provider API client with the given configuration
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("optilog"),
	}, nil
}

// ---------------------------------------------------------------------------
// Envelope-level operations
// ---------------------------------------------------------------------------

// Post sends a JSON body and returns the decoded envelope. A non-success
// envelope with a benign message is returned as-is with a nil error.
func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("optilog: failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(payload))
}

// Get performs a query and returns the decoded envelope
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Delete performs a deletion keyed by query parameters
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.do(ctx, http.MethodDelete, path, query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*Envelope, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("optilog: failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(authHeader, c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("optilog: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", shared.ErrRemoteUnavailable, resp.StatusCode)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("optilog: failed to parse response: %w", err)
	}

	if env.Statut != statutOK && !isBenignMessage(env.StatutText) {
		c.logger.Warn("provider returned error envelope",
			zap.String("path", path),
			zap.Int("statut", env.Statut),
			zap.String("message", env.StatutText))
		return nil, fmt.Errorf("optilog: %d - %s", env.Statut, env.StatutText)
	}
	return &env, nil
}

// isBenignMessage reports whether a provider status message is one of the
// known non-error phrases
func isBenignMessage(msg string) bool {
	lowered := strings.ToLower(msg)
	for _, parts := range benignPhrases {
		all := true
		for _, part := range parts {
			if !strings.Contains(lowered, part) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Typed operations
// ---------------------------------------------------------------------------

// Ping performs the secured round-trip used by the connector self-test
func (c *Client) Ping(ctx context.Context) error {
	env, err := c.Get(ctx, pingPath, nil)
	if err != nil {
		return err
	}
	if env.Statut != statutOK {
		return fmt.Errorf("optilog: ping rejected: %s", env.StatutText)
	}
	return nil
}

// GetOrder loads an order by its caller-assigned id. Returns (nil, nil)
// when the provider does not know the order.
func (c *Client) GetOrder(ctx context.Context, destID string) (*OrderDTO, error) {
	query := url.Values{"DestID": {destID}}
	if c.cfg.Extended {
		query.Set("Detail", "Colis")
	}
	env, err := c.Get(ctx, ordersPath, query)
	if err != nil {
		return nil, err
	}
	if env.Statut != statutOK || len(env.Data) == 0 {
		return nil, nil
	}
	var dto OrderDTO
	if err := json.Unmarshal(env.Data, &dto); err != nil {
		return nil, fmt.Errorf("optilog: failed to parse order: %w", err)
	}
	return &dto, nil
}

// UpsertOrder writes an order. The provider keys the upsert on DestID.
func (c *Client) UpsertOrder(ctx context.Context, order *OrderDTO) error {
	_, err := c.Post(ctx, ordersPath, order)
	return err
}

// DeleteOrder removes an order by its caller-assigned id
func (c *Client) DeleteOrder(ctx context.Context, destID string) error {
	_, err := c.Delete(ctx, ordersPath, url.Values{"DestID": {destID}})
	return err
}

// GetProduct loads a product by its provider-assigned id. Returns
// (nil, nil) when the provider does not know the product.
func (c *Client) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	env, err := c.Get(ctx, productsPath, url.Values{"ID": {id}})
	if err != nil {
		return nil, err
	}
	if env.Statut != statutOK || len(env.Data) == 0 {
		return nil, nil
	}
	var dto ProductDTO
	if err := json.Unmarshal(env.Data, &dto); err != nil {
		return nil, fmt.Errorf("optilog: failed to parse product: %w", err)
	}
	return &dto, nil
}

// UpsertProduct writes a product. The provider keys the upsert on SKU.
func (c *Client) UpsertProduct(ctx context.Context, product *ProductDTO) error {
	_, err := c.Post(ctx, productsPath, product)
	return err
}

// DeleteProduct removes a product by its SKU. Used together with
// UpsertProduct to realize a SKU rename as delete-old plus create-new.
func (c *Client) DeleteProduct(ctx context.Context, sku string) error {
	_, err := c.Delete(ctx, productsPath, url.Values{"SKU": {sku}})
	return err
}
