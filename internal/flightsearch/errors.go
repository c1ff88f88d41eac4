package flightsearch

import "fmt"

// HTTPError is returned when the provider answers with a non-2xx status.
type HTTPError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("flightsearch %s http %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
