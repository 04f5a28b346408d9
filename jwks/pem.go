package jwks

import "strings"

const (
	pemHeader    = "-----BEGIN CERTIFICATE-----\n"
	pemFooter    = "\n-----END CERTIFICATE-----\n"
	pemLineWidth = 64
)

// CertToPEM wraps a base64 DER certificate, as found in an x5c entry, in a
// PEM CERTIFICATE block with 64 character lines.
//
// An empty cert yields an empty string, not a header-only block.
func CertToPEM(cert string) string {
	if cert == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(pemHeader) + len(cert) + len(cert)/pemLineWidth + len(pemFooter))
	b.WriteString(pemHeader)
	for start := 0; start < len(cert); start += pemLineWidth {
		if start > 0 {
			b.WriteByte('\n')
		}
		end := start + pemLineWidth
		if end > len(cert) {
			end = len(cert)
		}
		b.WriteString(cert[start:end])
	}
	b.WriteString(pemFooter)

	return b.String()
}
