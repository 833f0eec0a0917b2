package llm

import (
	"net/http"
	"time"
)

// shared HTTP client for provider API calls
// reuses connection pool and timeout configuration
var providerHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}
