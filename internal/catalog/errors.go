package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedCatalog is returned when a payload is not a valid catalog
	ErrMalformedCatalog = errors.New("malformed catalog")

	// ErrUnsupportedScheme is returned for URIs the loader cannot fetch
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")

	// ErrHostNotAllowed is returned for http(s) URIs outside the loader's
	// host allow-list
	ErrHostNotAllowed = errors.New("host not allowed")
)

// FetchError describes a failed retrieval of a catalog
type FetchError struct {
	URI string

	// StatusCode is set for HTTP responses outside the 2xx range
	StatusCode int

	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URI, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
