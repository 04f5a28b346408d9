package jwksclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/auth0/go-jwks-client/jwks"
)

// Client resolves a kid to an RSA signing key published in a JWKS.
//
// Resolved keys are cached per kid for the lifetime of the Client and are
// never refreshed. Failures are never cached. A Client is safe for
// concurrent use; concurrent misses for the same kid each fetch the JWKS.
type Client struct {
	url        string
	httpClient *http.Client
	logger     Logger
	metrics    Metrics
	tracer     Tracer

	fetcher *jwks.Fetcher
	cache   *keyCache
}

// New constructs a new Client instance with the supplied options.
// It requires the JWKS URL to be passed in with WithURL.
//
// Example:
//
//	client, err := jwksclient.New(
//	    jwksclient.WithURL("https://auth.example.com/.well-known/jwks.json"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	key, err := client.GetSigningKey(ctx, token.Header.Kid)
func New(opts ...Option) (*Client, error) {
	c := &Client{
		logger:  DefaultLogger(),
		metrics: &NoopMetrics{},
		tracer:  &NoopTracer{},
		cache:   newKeyCache(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if c.url == "" {
		return nil, fmt.Errorf("JWKS URL is required (use WithURL)")
	}

	c.fetcher = jwks.NewFetcher(
		c.url,
		jwks.WithHTTPClient(c.httpClient),
		jwks.WithTransportLogger(c.logger),
	)

	return c, nil
}

// URL returns the JWKS endpoint of the Client.
func (c *Client) URL() string {
	return c.url
}

// CachedKeys returns the number of kids currently cached.
func (c *Client) CachedKeys() int {
	return c.cache.len()
}

// GetSigningKey returns the signing key published under kid.
//
// A cached kid is returned without any network access. Otherwise the JWKS is
// fetched once, filtered to RSA signing keys and the key matching kid is
// cached and returned. When no signing key matches, the error is of kind
// jwks.KindSigningKeyNotFound; every other failure is of kind jwks.KindJWKS.
func (c *Client) GetSigningKey(ctx context.Context, kid string) (jwks.SigningKey, error) {
	if key, ok := c.cache.get(kid); ok {
		c.metrics.IncCounter(MetricCacheRequests, map[string]string{"result": "hit"})
		c.logger.Debugf("jwks: cache hit for kid %q", kid)
		return key, nil
	}
	c.metrics.IncCounter(MetricCacheRequests, map[string]string{"result": "miss"})

	signingKeys, err := c.getSigningKeys(ctx, kid)
	if err != nil {
		return jwks.SigningKey{}, err
	}

	for _, key := range signingKeys {
		if key.KID != kid {
			continue
		}

		cached := c.cache.set(kid, key)
		c.metrics.SetGauge(MetricCachedKeys, float64(cached), nil)
		c.logger.Debugf("jwks: cached signing key for kid %q", kid)

		return key, nil
	}

	c.logger.Debugf("jwks: %d signing keys fetched from %s, none matches kid %q", len(signingKeys), c.url, kid)

	return jwks.SigningKey{}, jwks.NewError(
		jwks.KindSigningKeyNotFound,
		fmt.Sprintf("Unable to find a signing key that matches '%s'", kid),
		nil,
	)
}

// getSigningKeys fetches the JWKS and narrows it down to the signing keys.
func (c *Client) getSigningKeys(ctx context.Context, kid string) ([]jwks.SigningKey, error) {
	ctx, span := c.tracer.StartSpan(ctx, "jwks.fetch")
	defer span.Finish()
	span.SetTag("jwks.url", c.url)
	span.SetTag("jwks.kid", kid)

	start := time.Now()
	rawKeys, err := c.fetcher.Fetch(ctx)
	c.metrics.ObserveHistogram(MetricFetchDuration, time.Since(start).Seconds(), nil)
	if err != nil {
		c.metrics.IncCounter(MetricFetches, map[string]string{"outcome": "error"})
		c.logger.Debugf("jwks: fetching %s failed: %v", c.url, err)
		span.RecordError(err)
		return nil, err
	}
	c.metrics.IncCounter(MetricFetches, map[string]string{"outcome": "ok"})

	signingKeys, err := jwks.SigningKeys(rawKeys)
	if err != nil {
		c.logger.Warnf("jwks: %s returned %d keys: %v", c.url, len(rawKeys), err)
		span.RecordError(err)
		return nil, err
	}

	return signingKeys, nil
}
