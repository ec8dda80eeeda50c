package providers

import (
	"fmt"
	"strings"
)

// ConfigurationError is raised when a provider's API specification cannot be used.
// It is returned before any network call is made.
type ConfigurationError struct {
	ProviderID int64
	Missing    []string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "provider %d: invalid api specification", e.ProviderID)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	return b.String()
}

// ResponseError means the provider answered with a body that cannot be interpreted
// as an order status: empty, not JSON, or an explicit provider error message.
type ResponseError struct {
	ProviderID int64
	Reason     string
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("provider %d: %s", e.ProviderID, e.Reason)
}

// NetworkError covers transport failures, timeouts and non-2xx replies.
type NetworkError struct {
	ProviderID int64
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("provider %d: request timed out", e.ProviderID)
	case e.StatusCode != 0:
		return fmt.Sprintf("provider %d: unexpected HTTP status %d", e.ProviderID, e.StatusCode)
	default:
		return fmt.Sprintf("provider %d: request failed: %v", e.ProviderID, e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is produced by the response validator for non-2xx replies
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func snippet(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
