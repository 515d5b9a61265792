package ens

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultAPIBase is the public ENS profile API queried by HTTPResolver.
const DefaultAPIBase = "https://api.ensdata.net"

// Social holds handles from the well-known social text records.
type Social struct {
	Twitter   string `json:"twitter,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Discord   string `json:"discord,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
	Reddit    string `json:"reddit,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// ResolvedProfile is the best-effort result of resolving an ENS name.
type ResolvedProfile struct {
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Email       string `json:"email,omitempty"`
	Location    string `json:"location,omitempty"`
	Social      Social `json:"social"`
}

// Resolver resolves an ENS name to display metadata. Implementations are
// best-effort: an unresolvable name is an error the caller is expected to
// swallow, not a fatal condition.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*ResolvedProfile, error)
}

// HTTPResolver resolves profiles through an ENS profile API over HTTP.
type HTTPResolver struct {
	base   string
	client *http.Client
}

// NewHTTPResolver creates a resolver against the given API base URL.
// An empty base falls back to DefaultAPIBase.
func NewHTTPResolver(base string) *HTTPResolver {
	if base == "" {
		base = DefaultAPIBase
	}
	return &HTTPResolver{
		base: base,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// apiResponse mirrors the profile API's flat record payload.
type apiResponse struct {
	Address     string `json:"address"`
	Avatar      string `json:"avatar_url"`
	Name        string `json:"name"`
	DisplayName string `json:"ens_primary"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	Twitter     string `json:"twitter"`
	GitHub      string `json:"github"`
	Discord     string `json:"discord"`
	Telegram    string `json:"telegram"`
	Reddit      string `json:"reddit"`
	LinkedIn    string `json:"linkedin"`
	YouTube     string `json:"youtube"`
	Instagram   string `json:"instagram"`
}

// Resolve fetches the profile for a name. Any transport failure, non-200
// status or undecodable body is returned as an error.
func (r *HTTPResolver) Resolve(ctx context.Context, name string) (*ResolvedProfile, error) {
	normalized := NormalizeName(name)
	endpoint := r.base + "/" + url.PathEscape(normalized)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building resolve request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", normalized, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("ens name not registered: %s", normalized)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolving %s: unexpected status %d", normalized, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding profile for %s: %w", normalized, err)
	}

	return &ResolvedProfile{
		Name:        normalized,
		Address:     body.Address,
		Avatar:      body.Avatar,
		DisplayName: body.DisplayName,
		Description: body.Description,
		URL:         body.URL,
		Email:       body.Email,
		Location:    body.Location,
		Social: Social{
			Twitter:   body.Twitter,
			GitHub:    body.GitHub,
			Discord:   body.Discord,
			Telegram:  body.Telegram,
			Reddit:    body.Reddit,
			LinkedIn:  body.LinkedIn,
			YouTube:   body.YouTube,
			Instagram: body.Instagram,
		},
	}, nil
}

// CachedResolver wraps a Resolver with a TTL cache.
type CachedResolver struct {
	inner Resolver
	cache *Cache
}

// NewCachedResolver wraps the given resolver with the given cache.
func NewCachedResolver(inner Resolver, cache *Cache) *CachedResolver {
	return &CachedResolver{inner: inner, cache: cache}
}

// Resolve returns a cached profile when fresh, otherwise resolves through
// the wrapped resolver and caches the result. Failures are not cached.
func (c *CachedResolver) Resolve(ctx context.Context, name string) (*ResolvedProfile, error) {
	normalized := NormalizeName(name)
	if profile := c.cache.Get(normalized); profile != nil {
		return profile, nil
	}

	profile, err := c.inner.Resolve(ctx, normalized)
	if err != nil {
		return nil, err
	}
	c.cache.Set(normalized, profile)
	return profile, nil
}
