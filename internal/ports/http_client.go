package ports

import "net/http"

// HTTPClient abstracts HTTP operations so adapters can be tested
// without a network. The standard *http.Client satisfies it.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}
