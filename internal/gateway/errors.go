package gateway

import "errors"

// Client error kinds, surfaced in the HTTP error envelope.
const (
	KindInvalidSymbol   = "invalid_symbol"
	KindInvalidQuery    = "invalid_query"
	KindInvalidRange    = "invalid_range"
	KindInvalidInterval = "invalid_interval"
	KindInvalidBatch    = "invalid_batch"
)

// ClientError reports malformed client input. It is the only error the
// gateway surfaces to callers; upstream and infrastructure failures are
// absorbed by the fallback chain.
type ClientError struct {
	Kind    string
	Message string
}

func (e *ClientError) Error() string { return e.Message }

// AsClientError unwraps err into a ClientError, or nil.
func AsClientError(err error) *ClientError {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}
