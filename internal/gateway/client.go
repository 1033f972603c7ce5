// internal/gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/models"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() string
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

// StaticToken wraps a fixed token.
func StaticToken(token string) TokenSource {
	return staticToken(token)
}

// Client talks to the collection store and auth API.
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
	tokens     TokenSource
	log        *logrus.Entry
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) { c.log = log.WithField("component", "gateway") }
}

func New(cfg config.ClientConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logrus.NewEntry(logrus.StandardLogger()).WithField("component", "gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type collectionData struct {
	Items   json.RawMessage `json:"items"`
	Version models.Version  `json:"version"`
}

type replaceBody struct {
	Items   interface{} `json:"items"`
	Version *int64      `json:"version,omitempty"`
}

func (c *Client) Products(ctx context.Context) (models.Products, models.Version, error) {
	var products models.Products
	v, err := c.fetch(ctx, models.CollectionProducts, &products)
	return products, v, err
}

func (c *Client) Sales(ctx context.Context) (models.Sales, models.Version, error) {
	var sales models.Sales
	v, err := c.fetch(ctx, models.CollectionSales, &sales)
	return sales, v, err
}

func (c *Client) Clients(ctx context.Context) (models.Clients, models.Version, error) {
	clients := models.Clients{}
	v, err := c.fetch(ctx, models.CollectionClients, &clients)
	return clients, v, err
}

func (c *Client) SaveProducts(ctx context.Context, products models.Products, expected models.Version) (models.Version, error) {
	if products == nil {
		products = models.Products{}
	}
	return c.replace(ctx, models.CollectionProducts, products, expected)
}

func (c *Client) SaveSales(ctx context.Context, sales models.Sales, expected models.Version) (models.Version, error) {
	if sales == nil {
		sales = models.Sales{}
	}
	return c.replace(ctx, models.CollectionSales, sales, expected)
}

func (c *Client) SaveClients(ctx context.Context, clients models.Clients, expected models.Version) (models.Version, error) {
	if clients == nil {
		clients = models.Clients{}
	}
	return c.replace(ctx, models.CollectionClients, clients, expected)
}

func (c *Client) fetch(ctx context.Context, name models.CollectionName, into interface{}) (models.Version, error) {
	var data collectionData
	if err := c.do(ctx, http.MethodGet, "/api/store/"+string(name), nil, &data); err != nil {
		return 0, err
	}
	if len(data.Items) > 0 && string(data.Items) != "null" {
		if err := json.Unmarshal(data.Items, into); err != nil {
			return 0, fmt.Errorf("failed to decode %s: %w", name, err)
		}
	}
	return data.Version, nil
}

func (c *Client) replace(ctx context.Context, name models.CollectionName, items interface{}, expected models.Version) (models.Version, error) {
	body := replaceBody{Items: items}
	if expected.Checked() {
		v := int64(expected)
		body.Version = &v
	}

	var data collectionData
	if err := c.do(ctx, http.MethodPut, "/api/store/"+string(name), body, &data); err != nil {
		return 0, err
	}
	c.log.WithFields(logrus.Fields{
		"collection": name,
		"version":    data.Version,
	}).Debug("Collection saved")
	return data.Version, nil
}

// do sends one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}
	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Milliseconds(),
	}).Debug("Store request")

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("%s %s: invalid response: %w", method, path, err)
	}

	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: failed to decode data: %w", method, path, err)
		}
	}
	return nil
}
