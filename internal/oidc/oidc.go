package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WellKnownEndpoints holds the well known OIDC endpoints
type WellKnownEndpoints struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// GetWellKnownEndpointsFromIssuerURL gets the well known endpoints for the
// passed in issuer url. A nil httpClient means a default client.
//
// The issuer advertised by the discovery document must match the issuer
// URL, ignoring a trailing slash.
func GetWellKnownEndpointsFromIssuerURL(
	ctx context.Context,
	httpClient *http.Client,
	issuerURL url.URL,
) (*WellKnownEndpoints, error) {
	expectedIssuer := issuerURL.String()
	issuerURL.Path = path.Join(issuerURL.Path, ".well-known/openid-configuration")

	client := resty.New()
	if httpClient != nil {
		client = resty.NewWithClient(httpClient)
	}

	resp, err := client.R().SetContext(ctx).Get(issuerURL.String())
	if err != nil {
		return nil, fmt.Errorf("could not fetch well-known endpoints from url %s: %w", issuerURL.String(), err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("could not fetch well-known endpoints from url %s: status %d", issuerURL.String(), resp.StatusCode())
	}

	var wkEndpoints WellKnownEndpoints
	if err := json.Unmarshal(resp.Body(), &wkEndpoints); err != nil {
		return nil, fmt.Errorf("could not decode json body when getting well known endpoints: %w", err)
	}

	if wkEndpoints.JWKSURI == "" {
		return nil, errors.New("well known endpoints do not contain a jwks_uri")
	}

	if wkEndpoints.Issuer != "" && !sameIssuer(wkEndpoints.Issuer, expectedIssuer) {
		return nil, fmt.Errorf("issuer mismatch: discovery document advertises %q, expected %q", wkEndpoints.Issuer, expectedIssuer)
	}

	return &wkEndpoints, nil
}

func sameIssuer(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}
