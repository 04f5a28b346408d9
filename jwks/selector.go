package jwks

const (
	useSignature = "sig"
	keyTypeRSA   = "RSA"
)

// SigningKeys filters keys down to the RSA signing keys that carry a kid and
// at least one certificate, and converts the first certificate of each to PEM.
//
// It fails with KindJWKS when keys is empty or when no key qualifies.
func SigningKeys(keys []RawKey) ([]SigningKey, error) {
	if len(keys) == 0 {
		return nil, NewError(KindJWKS, "The JWKS did not contain any keys", nil)
	}

	signingKeys := make([]SigningKey, 0, len(keys))
	for _, key := range keys {
		if !isSigningKey(key) {
			continue
		}

		signingKeys = append(signingKeys, SigningKey{
			KID:       key.Kid,
			NBF:       string(key.Nbf),
			PublicKey: CertToPEM(key.X5c[0]),
		})
	}

	if len(signingKeys) == 0 {
		return nil, NewError(KindJWKS, "The JWKS did not contain any signing keys", nil)
	}

	return signingKeys, nil
}

func isSigningKey(key RawKey) bool {
	return key.Use == useSignature &&
		key.Kty == keyTypeRSA &&
		key.Kid != "" &&
		len(key.X5c) > 0
}
