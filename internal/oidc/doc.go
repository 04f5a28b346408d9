/*
Package oidc provides OIDC (OpenID Connect) discovery of the JWKS endpoint.

OIDC providers expose a discovery document at a well-known URL:

	https://issuer.example.com/.well-known/openid-configuration

Only the issuer and jwks_uri fields are read:

	issuerURL, _ := url.Parse("https://auth.example.com/")

	endpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, nil, *issuerURL)
	if err != nil {
	    // network failure, non-200 status, invalid JSON, missing jwks_uri
	    // or an issuer that does not match issuerURL
	}

	jwksURI := endpoints.JWKSURI

See OpenID Connect Discovery 1.0:
https://openid.net/specs/openid-connect-discovery-1_0.html
*/
package oidc
