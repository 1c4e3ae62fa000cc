package provider

import (
	"errors"
	"fmt"
)

// ErrNoData marks a well-formed upstream response that carried nothing
// usable (empty or malformed payload). The chain moves on to the next
// provider.
var ErrNoData = errors.New("provider: no data")

// UpstreamError marks a non-success status from an upstream API.
type UpstreamError struct {
	Provider string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider %s: upstream status %d", e.Provider, e.Status)
}
