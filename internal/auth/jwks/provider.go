// Package jwks retrieves and caches the identity provider's published JSON
// Web Key Set.
package jwks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/castingworks/casting-agency/internal/auth"
)

const wellKnownPath = "/.well-known/jwks.json"

// maxResponseSize bounds the JWKS document size. Real key sets are a few
// kilobytes; anything near this limit is not a key set.
const maxResponseSize = 1 * 1024 * 1024

// Provider fetches the key set from the identity provider on every call.
// Most callers will want the CachingProvider instead, which fetches once per
// process and serves from memory thereafter.
type Provider struct {
	jwksURL string
	client  *http.Client
}

// NewProvider builds a Provider for the given identity-provider domain.
// The key set is fetched from https://<domain>/.well-known/jwks.json unless
// WithJWKSURL overrides it.
func NewProvider(domain string, opts ...ProviderOption) (*Provider, error) {
	if domain == "" {
		return nil, fmt.Errorf("identity provider domain is required")
	}

	p := &Provider{
		jwksURL: "https://" + domain + wellKnownPath,
		client:  &http.Client{Timeout: 5 * time.Second},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return p, nil
}

// KeyFunc fetches and parses the provider's key set. All failures are
// reported as jwks_fetch_failed: an unreachable or misbehaving key endpoint
// is an infrastructure fault, not a client error.
func (p *Provider) KeyFunc(ctx context.Context) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.jwksURL, nil)
	if err != nil {
		return nil, fetchFailed(err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fetchFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fetchFailed(fmt.Errorf("request returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fetchFailed(err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fetchFailed(fmt.Errorf("could not parse JWKS document: %w", err))
	}

	return set, nil
}

func fetchFailed(cause error) error {
	return auth.WrapError(auth.CodeJWKSFetchFailed, "Unable to fetch the signing keys.", http.StatusInternalServerError, cause)
}

// CachingProvider wraps a Provider with a process-lifetime cache. The cache
// is filled by the first successful fetch and served from memory thereafter;
// it never expires on its own. Invalidate drops the cached set so the next
// call refetches, which is the operator's hook for provider key rotation.
type CachingProvider struct {
	provider *Provider

	mu  sync.Mutex
	set jwk.Set
}

// NewCachingProvider builds a CachingProvider for the given domain.
func NewCachingProvider(domain string, opts ...ProviderOption) (*CachingProvider, error) {
	p, err := NewProvider(domain, opts...)
	if err != nil {
		return nil, err
	}
	return &CachingProvider{provider: p}, nil
}

// KeyFunc returns the cached key set, fetching it on first use. The fill is
// serialized so concurrent first calls perform a single network fetch.
// Fetch failures are not cached; the next call retries.
func (c *CachingProvider) KeyFunc(ctx context.Context) (jwk.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.set != nil {
		return c.set, nil
	}

	set, err := c.provider.KeyFunc(ctx)
	if err != nil {
		return nil, err
	}

	c.set = set
	return set, nil
}

// Invalidate drops the cached key set. The next KeyFunc call will fetch a
// fresh one.
func (c *CachingProvider) Invalidate() {
	c.mu.Lock()
	c.set = nil
	c.mu.Unlock()
}
