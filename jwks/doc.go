/*
Package jwks provides the building blocks for resolving RSA signing keys
from a JSON Web Key Set (JWKS) endpoint.

Most applications should not use this package directly but the
jwksclient.Client, which adds per-kid caching on top of it. The pieces are
exported so they can be reused or tested on their own.

# Overview

A lookup is a pipeline of three steps:
  - Fetcher: one GET against the JWKS URL, returning the raw keys
  - SigningKeys: filters the raw keys to usable RSA signing keys
  - CertToPEM: converts the first x5c certificate of each key to PEM

# Fetching

	f := jwks.NewFetcher("https://auth.example.com/.well-known/jwks.json")

	keys, err := f.Fetch(ctx)
	if err != nil {
	    // Couldn't load jwks, ... / Couldn't get JWKS, Http Error ...
	}

Fetch performs exactly one request. It adds no query parameters, headers or
body, does not retry and configures no timeout: bound the call with ctx or
pass a client built with WithHTTPClient.

# Selecting Signing Keys

A raw key is a signing key when all of the following hold:
  - use is "sig"
  - kty is "RSA"
  - kid is present
  - x5c holds at least one certificate

Only the first certificate of the chain is used; n and e are ignored.

	signingKeys, err := jwks.SigningKeys(keys)
	if err != nil {
	    // The JWKS did not contain any keys / ... any signing keys
	}

# PEM Conversion

	pem := jwks.CertToPEM("MIIC...")
	// -----BEGIN CERTIFICATE-----
	// MIIC...
	// -----END CERTIFICATE-----

An empty certificate string converts to an empty string, so a key published
with x5c [""] resolves with an empty PublicKey rather than a broken block.

# Error Handling

Every failure is an *Error carrying a Kind:

	switch jwks.KindOf(err) {
	case jwks.KindJWKS:
	    // transport, HTTP status or structural problem
	case jwks.KindSigningKeyNotFound:
	    // the set was fine but no key matched the kid
	}

Error() returns the message only. Transport causes stay reachable through
errors.Unwrap.

# Key Material

SigningKey.Key parses the PEM certificate into a jwk.Key (lestrrat-go/jwx)
with its key ID set, and SigningKey.RSAPublicKey exports the *rsa.PublicKey.
*/
package jwks
