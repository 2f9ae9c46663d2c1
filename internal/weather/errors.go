package weather

import "errors"

var (
	// ErrTransport covers network failures and non-2xx provider responses.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedPayload means the provider JSON lacked a required field
	// or had one of the wrong type.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrEmptyCitySelection means there is nothing to select as the current
	// day: either no city was given or the forecast came back empty.
	ErrEmptyCitySelection = errors.New("empty city selection")
)
