package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"quote-board/src/helpers"
	"quote-board/src/logger"
	"quote-board/src/models"
)

// -----------------------------------------------------------------------------

// Manager performs GET requests with the transport policy passed in at
// construction time. Headers, proxy and TLS settings live here and nowhere
// else; no shared or global client is ever mutated.
type Manager struct {
	cfg    models.MNetworkConfig
	client *http.Client
	logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewManager(cfg models.MNetworkConfig, log *logger.Logger) *Manager {
	transport := &http.Transport{}

	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.Proxy != "" {
		if proxyURL, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			log.Warning("Ignoring unparsable proxy '%s': %v", cfg.Proxy, err)
		}
	}

	return &Manager{
		cfg:    cfg,
		logger: log,
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries and exponential backoff. All
// failures come back as helpers.FetchError so callers can degrade to the next
// source instead of propagating transport detail.
func (nm *Manager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewFetchError("invalid url", err)
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqURL.RawQuery = q.Encode()
	finalURL := reqURL.String()

	var lastErr error

	for i := 0; i <= nm.cfg.MaxRetries; i++ {
		if i > 0 {
			// Exponential backoff, interruptible by ctx.
			select {
			case <-time.After(time.Duration(i*i) * time.Second):
			case <-ctx.Done():
				return nil, helpers.NewFetchError("request cancelled", ctx.Err())
			}
		}

		body, err := nm.doOnce(ctx, finalURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		nm.logger.Info("Request failed (attempt %d/%d): %v", i+1, nm.cfg.MaxRetries+1, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, helpers.NewFetchError("max retries exceeded", lastErr)
}

// -----------------------------------------------------------------------------

func (nm *Manager) doOnce(ctx context.Context, finalURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", nm.cfg.UserAgent)
	for k, v := range nm.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := nm.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("blocked (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
