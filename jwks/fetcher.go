package jwks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FetcherOption is how options for the Fetcher are set up.
type FetcherOption func(*Fetcher)

// WithHTTPClient makes the Fetcher issue its requests through c.
// A nil client is ignored.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithTransportLogger routes the HTTP library's own warnings and errors to l.
func WithTransportLogger(l resty.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// Fetcher retrieves the raw key list from a single JWKS endpoint.
// Each call to Fetch performs exactly one GET; there are no retries.
type Fetcher struct {
	url        string
	httpClient *http.Client
	logger     resty.Logger
	client     *resty.Client
}

// NewFetcher builds a Fetcher for the given JWKS URL.
func NewFetcher(jwksURL string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{url: jwksURL}
	for _, opt := range opts {
		opt(f)
	}

	if f.httpClient != nil {
		f.client = resty.NewWithClient(f.httpClient)
	} else {
		// resty.New installs a cookie jar; a bare client keeps fetches stateless.
		f.client = resty.NewWithClient(&http.Client{})
	}
	if f.logger != nil {
		f.client.SetLogger(f.logger)
	}

	return f
}

// URL returns the JWKS endpoint the Fetcher reads from.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch GETs the JWKS and returns its keys, which may be empty.
//
// A transport failure or a status outside [200, 300) is reported as a
// KindJWKS *Error. A body that cannot be decoded is reported the same way
// as a body without keys.
func (f *Fetcher) Fetch(ctx context.Context) ([]RawKey, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		return nil, NewError(KindJWKS, "Couldn't load jwks, "+transportMessage(err), err)
	}

	if status := resp.StatusCode(); status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, NewError(KindJWKS, fmt.Sprintf("Couldn't get JWKS, Http Error %d", status), nil)
	}

	var set Set
	if err := json.Unmarshal(resp.Body(), &set); err != nil {
		return nil, NewError(KindJWKS, "The JWKS did not contain any keys", fmt.Errorf("could not decode jwks: %w", err))
	}

	return set.Keys, nil
}

// transportMessage strips the method and URL the HTTP client prefixes to
// transport errors so only the cause's text is embedded.
func transportMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
