package probe

import "errors"

var (
	// errHTTP3Unsupported marks the permanent HTTP/3 stub outcome.
	errHTTP3Unsupported = errors.New("HTTP/3 not supported")

	// errNotRequestable covers tags that only ever appear on responses
	// (fallback, unknown) being handed to Do.
	errNotRequestable = errors.New("protocol cannot be requested directly")
)
