package configapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"preop-drug-check/internal/platform/httpclient"
)

const configPath = "/api/config"

var (
	ErrNotConfigured = errors.New("api key not configured")
	ErrKeyEmpty      = errors.New("config endpoint returned empty apiKey")
	ErrUpstream      = errors.New("config endpoint error")
)

// Response es el contrato de GET /api/config.
type Response struct {
	APIKey string `json:"apiKey"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client obtiene la API key desde GET <BaseURL>/api/config.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: base url required", ErrNotConfigured)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

func (c *Client) APIKey(ctx context.Context) (string, error) {
	var out Response
	if err := c.http.DoJSON(ctx, http.MethodGet, configPath, nil, nil, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	key := strings.TrimSpace(out.APIKey)
	if key == "" {
		return "", ErrKeyEmpty
	}
	return key, nil
}

// Static es la fuente del lado servidor: la key viene de la configuración.
type Static struct {
	key string
}

func NewStatic(key string) *Static {
	return &Static{key: strings.TrimSpace(key)}
}

func (s *Static) APIKey(context.Context) (string, error) {
	if s == nil || s.key == "" {
		return "", ErrNotConfigured
	}
	return s.key, nil
}
