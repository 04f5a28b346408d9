package jwks

import "errors"

// ErrorKind discriminates the failures a JWKS lookup can produce.
type ErrorKind int

const (
	// KindUnknown is reported by KindOf for errors that did not come from this package.
	KindUnknown ErrorKind = iota

	// KindJWKS covers transport and structural failures: a non-2xx status,
	// a transport error, a body without keys or a set without signing keys.
	KindJWKS

	// KindSigningKeyNotFound is returned when the JWKS held valid signing
	// keys but none matched the requested kid.
	KindSigningKeyNotFound
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindJWKS:
		return "jwks_error"
	case KindSigningKeyNotFound:
		return "signing_key_not_found"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the fetcher, the selector and
// the client. Callers tell failures apart by Kind.
type Error struct {
	// Kind is the machine-readable discriminant.
	Kind ErrorKind

	// Message is the human-readable message, returned verbatim by Error().
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new *Error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     cause,
	}
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
