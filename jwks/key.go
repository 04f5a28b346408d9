package jwks

import (
	"bytes"
	"crypto/rsa"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Set is the decoded body of a JWKS endpoint.
type Set struct {
	Keys []RawKey `json:"keys"`
}

// RawKey is one entry of a JWKS as published by the identity provider.
// N and E are decoded but never used for key material; the first x5c
// certificate is.
type RawKey struct {
	Alg string    `json:"alg"`
	Kty string    `json:"kty"`
	Use string    `json:"use"`
	X5c []string  `json:"x5c"`
	N   string    `json:"n"`
	E   string    `json:"e"`
	Kid string    `json:"kid"`
	X5t string    `json:"x5t"`
	Nbf NotBefore `json:"nbf,omitempty"`
}

// NotBefore is a key's "nbf" value kept as text. Providers publish it
// either as a string or as a number; both decode without failing the set.
type NotBefore string

func (n *NotBefore) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NotBefore(s)
		return nil
	default:
		*n = NotBefore(b)
		return nil
	}
}

// SigningKey is a resolved RSA signing key.
//
// PublicKey holds the PEM encoded leaf certificate of the key's x5c chain.
// It is empty when the published certificate string was empty.
// NBF is empty when the key carried no "not before" value.
type SigningKey struct {
	KID       string `json:"kid"`
	NBF       string `json:"nbf,omitempty"`
	PublicKey string `json:"publicKey"`
}

// Key parses the PEM certificate into a jwk.Key with its key ID set,
// ready to be handed to a JWT verifier.
func (k SigningKey) Key() (jwk.Key, error) {
	if k.PublicKey == "" {
		return nil, fmt.Errorf("signing key %q has no certificate", k.KID)
	}

	key, err := jwk.ParseKey([]byte(k.PublicKey), jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("could not parse certificate of signing key %q: %w", k.KID, err)
	}

	if err := key.Set(jwk.KeyIDKey, k.KID); err != nil {
		return nil, fmt.Errorf("could not set key ID: %w", err)
	}

	return key, nil
}

// RSAPublicKey returns the RSA public key carried by the certificate.
func (k SigningKey) RSAPublicKey() (*rsa.PublicKey, error) {
	key, err := k.Key()
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("could not export signing key %q: %w", k.KID, err)
	}

	pub, ok := raw.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signing key %q is not an RSA key: %T", k.KID, raw)
	}

	return pub, nil
}
