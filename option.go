package jwksclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Option configures the Client.
// Returns error for validation failures.
type Option func(*Client) error

// WithURL sets the JWKS endpoint the Client reads keys from (REQUIRED).
//
// The URL must be absolute, e.g. https://auth.example.com/.well-known/jwks.json.
func WithURL(jwksURL string) Option {
	return func(c *Client) error {
		if jwksURL == "" {
			return errors.New("JWKS URL cannot be empty")
		}

		u, err := url.Parse(jwksURL)
		if err != nil {
			return fmt.Errorf("could not parse JWKS URL: %w", err)
		}
		if !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("JWKS URL must be absolute: %q", jwksURL)
		}

		c.url = jwksURL
		return nil
	}
}

// WithCustomClient sets the HTTP client used to fetch the JWKS.
// If not specified, a client without a timeout is used; bound calls
// through the context passed to GetSigningKey instead.
func WithCustomClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return errors.New("HTTP client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink. Defaults to NoopMetrics.
func WithMetrics(metrics Metrics) Option {
	return func(c *Client) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		c.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer. Defaults to NoopTracer.
func WithTracer(tracer Tracer) Option {
	return func(c *Client) error {
		if tracer == nil {
			return errors.New("tracer cannot be nil")
		}
		c.tracer = tracer
		return nil
	}
}
