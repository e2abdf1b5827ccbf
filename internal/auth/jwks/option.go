package jwks

import (
	"fmt"
	"net/http"
	"time"
)

// ProviderOption configures a Provider or CachingProvider.
type ProviderOption func(*Provider) error

// WithJWKSURL overrides the key-set URL derived from the provider domain.
func WithJWKSURL(url string) ProviderOption {
	return func(p *Provider) error {
		if url == "" {
			return fmt.Errorf("JWKS URL cannot be empty")
		}
		p.jwksURL = url
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client for key-set fetches. The client
// should carry its own timeout; fetches must never block indefinitely.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) error {
		if client == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		p.client = client
		return nil
	}
}

// WithTimeout sets the fetch timeout on the provider's HTTP client.
//
// Default: 5 seconds
func WithTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		p.client.Timeout = d
		return nil
	}
}
