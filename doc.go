/*
Package jwksclient resolves JWT key IDs to RSA signing keys published in a
JSON Web Key Set (JWKS).

It fetches the JWKS from a single endpoint, keeps the RSA keys meant for
signatures, converts their leaf certificate to PEM and caches the result per
kid, so a kid is fetched at most once per Client.

# Basic Usage

	client, err := jwksclient.New(
	    jwksclient.WithURL("https://auth.example.com/.well-known/jwks.json"),
	)
	if err != nil {
	    log.Fatal(err)
	}

	key, err := client.GetSigningKey(ctx, kid)
	if err != nil {
	    // see Error Handling
	}

	fmt.Print(key.PublicKey) // -----BEGIN CERTIFICATE-----...

The returned jwks.SigningKey is a value; key.Key() and key.RSAPublicKey()
turn the PEM certificate into key material for a JWT verifier.

# Caching

Successfully resolved keys stay cached for the lifetime of the Client. They
are not refreshed when the identity provider rotates its keys: a kid that was
resolved once keeps resolving to the same key. Failed lookups are never
cached, so a later call for the same kid fetches again.

Concurrent calls that miss the cache for the same kid each issue their own
request.

# Error Handling

All errors returned by GetSigningKey carry a kind:

	key, err := client.GetSigningKey(ctx, kid)
	switch jwks.KindOf(err) {
	case jwks.KindSigningKeyNotFound:
	    // Unable to find a signing key that matches '<kid>'
	case jwks.KindJWKS:
	    // Couldn't load jwks, <cause>
	    // Couldn't get JWKS, Http Error <status>
	    // The JWKS did not contain any keys
	    // The JWKS did not contain any signing keys
	}

# Timeouts

The Client sets no timeout and never retries. Bound a call with the context:

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	key, err := client.GetSigningKey(ctx, kid)

or supply an *http.Client with WithCustomClient.

# Observability

	client, err := jwksclient.New(
	    jwksclient.WithURL(jwksURL),
	    jwksclient.WithLogger(jwksclient.NewLogrusLogger(logrus.StandardLogger())),
	    jwksclient.WithMetrics(jwksclient.NewPrometheusMetrics(prometheus.DefaultRegisterer)),
	    jwksclient.WithTracer(jwksclient.NewOpenTelemetryTracer(otel.Tracer("jwks"))),
	)

Metrics emitted:
  - jwks_cache_requests_total{result="hit"|"miss"}
  - jwks_fetch_total{outcome="ok"|"error"}
  - jwks_fetch_duration_seconds
  - jwks_cached_keys

# Thread Safety

A Client is safe for concurrent use by multiple goroutines. Separate
Clients never share cache entries.
*/
package jwksclient
