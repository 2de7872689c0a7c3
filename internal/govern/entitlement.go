package govern

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/regintel/riskscan/internal/cache"
	"github.com/regintel/riskscan/internal/model"
)

// Entitler answers whether a caller holds the premium entitlement the
// analysis feature requires.
type Entitler interface {
	IsEntitled(ctx context.Context, identity string) (bool, error)
}

// StaticEntitler answers the same for everyone; used by the local analyze
// command and by tests.
type StaticEntitler bool

// IsEntitled implements Entitler.
func (s StaticEntitler) IsEntitled(ctx context.Context, identity string) (bool, error) {
	return bool(s), nil
}

// entitlementAnswer is the resolver's wire contract.
type entitlementAnswer struct {
	IsEntitled bool `json:"isEntitled"`
}

// ResolverClient queries the tenant/entitlement resolver over HTTP and
// caches answers for a short TTL so repeated uploads from the same tenant
// do not hammer the resolver.
type ResolverClient struct {
	client *resty.Client
	cache  cache.Cache
	ttl    time.Duration
}

// NewResolverClient creates a client for the given resolver base URL.
func NewResolverClient(cfg model.EntitlementConfig, c cache.Cache) *ResolverClient {
	client := resty.New().
		SetBaseURL(cfg.ResolverURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(1)

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ResolverClient{client: client, cache: c, ttl: ttl}
}

// IsEntitled implements Entitler. Resolver failures deny by default: a
// paid feature must not open up because a dependency is down.
func (r *ResolverClient) IsEntitled(ctx context.Context, identity string) (bool, error) {
	key := cache.Key("entitlement:" + identity)
	if r.cache != nil {
		if raw, found := r.cache.Get(key); found {
			var answer entitlementAnswer
			if err := json.Unmarshal(raw, &answer); err == nil {
				return answer.IsEntitled, nil
			}
		}
	}

	var answer entitlementAnswer
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("identity", identity).
		SetResult(&answer).
		Get("/v1/entitlements")
	if err != nil {
		return false, fmt.Errorf("entitlement resolver: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("entitlement resolver: status %d", resp.StatusCode())
	}

	if r.cache != nil {
		if raw, err := json.Marshal(answer); err == nil {
			_ = r.cache.Set(key, raw, r.ttl)
		}
	}
	return answer.IsEntitled, nil
}
