package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"wildberries/catalog/internal/config"
	"wildberries/catalog/internal/domain"
	"wildberries/catalog/internal/proxy"
)

const acceptHeader = "application/json,text/plain,*/*"

// SearchClient fetches the subject facet of one leaf
type SearchClient interface {
	GetLeafSubjects(ctx context.Context, leaf domain.LeafDescriptor) ([]domain.Subject, error)
}

type searchClient struct {
	rl             ratelimit.Limiter
	searchURL      string
	params         []string
	acceptLanguage string
	timeout        time.Duration
	httpClient     *resty.Client
	proxySupplier  proxy.ProxySupplier
	breaker        *circuitBreaker
}

// NewSearchClient builds the shared client used by every leaf task
func NewSearchClient(cfg config.SearchConfig, userAgent string, proxySupplier proxy.ProxySupplier) SearchClient {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout()).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("User-Agent", userAgent).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &searchClient{
		rl:             rl,
		searchURL:      strings.TrimRight(cfg.Host, "/") + cfg.Path,
		params:         cfg.Params,
		acceptLanguage: cfg.AcceptLanguage,
		timeout:        cfg.RequestTimeout(),
		httpClient:     client,
		proxySupplier:  proxySupplier,
		breaker:        newCircuitBreaker(time.Duration(cfg.Cooldown) * time.Second),
	}
}

func (c *searchClient) GetLeafSubjects(ctx context.Context, leaf domain.LeafDescriptor) ([]domain.Subject, error) {
	searchURL, err := BuildSearchURL(c.searchURL, c.params, leaf.SearchQuery)
	if err != nil {
		return nil, err
	}

	payload, err := c.fetchJSON(ctx, searchURL, leaf.LeafFullURL)
	if err != nil {
		return nil, err
	}

	subjects, err := ExtractSubjects(payload)
	if err != nil {
		return nil, err
	}

	log.Debugf("Leaf %d (%s): %d subjects", leaf.LeafID, leaf.LeafName, len(subjects))
	return subjects, nil
}

// BuildSearchURL merges the fixed params with query. Values are form-encoded,
// so spaces become '+'.
func BuildSearchURL(base string, params []string, query string) (string, error) {
	values := url.Values{}
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return "", fmt.Errorf("invalid search param %q", p)
		}
		values.Set(key, value)
	}
	values.Set("query", query)

	return base + "?" + values.Encode(), nil
}

func (c *searchClient) fetchJSON(ctx context.Context, searchURL, referer string) (*searchResponse, error) {
	if c.breaker.isOpen() {
		remaining := c.breaker.remaining()
		return nil, fmt.Errorf("%w - requests disabled for %v more", ErrCircuitOpen, remaining.Round(time.Second))
	}

	c.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.get(reqCtx, searchURL, referer)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		resp, err = c.retryWithNextProxy(reqCtx, searchURL, referer)
		if err != nil {
			return nil, err
		}
	}

	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status())
	}

	return DecodeSearchResponse(resp.Header().Get("Content-Type"), []byte(resp.String()))
}

func (c *searchClient) get(ctx context.Context, searchURL, referer string) (*resty.Response, error) {
	return c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", acceptHeader).
		SetHeader("Accept-Language", c.acceptLanguage).
		SetHeader("Referer", referer).
		Get(searchURL)
}

// retryWithNextProxy switches proxy once after HTTP 429; without a working
// proxy the circuit breaker opens.
func (c *searchClient) retryWithNextProxy(ctx context.Context, searchURL, referer string) (*resty.Response, error) {
	log.Warnf("🚫 Rate limit exceeded for URL: %s", searchURL)

	if c.proxySupplier != nil {
		if newProxy := c.proxySupplier.Get(); newProxy != "" {
			log.Infof("🔄 Switching to new proxy: %s", newProxy)
			c.httpClient.SetProxy(newProxy)

			retryResp, retryErr := c.get(ctx, searchURL, referer)
			if retryErr == nil && retryResp.StatusCode() != http.StatusTooManyRequests {
				log.Infof("✅ Retry successful with new proxy")
				return retryResp, nil
			}
		}
	}

	c.breaker.trigger()
	return nil, errors.New("rate limited (HTTP 429) - circuit breaker activated")
}
