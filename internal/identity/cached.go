package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
)

type cachedPrincipal struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	TableNumber *int64 `json:"table_number,omitempty"`
}

// CachedProvider keeps Resolve results in Redis for ttl.  Authenticate is
// always delegated.  Redis errors fall through to the inner provider, and
// unknown principals are not cached.
type CachedProvider struct {
	inner  Provider
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCachedProvider wraps inner.  A nil client returns inner unchanged.
func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration) Provider {
	if rdb == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl, prefix: "principal:"}
}

func (c *CachedProvider) Resolve(ctx context.Context, callerID string) (model.Principal, error) {
	key := c.prefix + callerID
	if bs, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		if p, ok := decodePrincipal(bs); ok {
			return p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("identity-cache: get %s: %v", key, err)
	}

	p, err := c.inner.Resolve(ctx, callerID)
	if err != nil {
		return model.Principal{}, err
	}
	bs, err := json.Marshal(cachedPrincipal{Username: p.Username, Role: string(p.Role), TableNumber: p.TableNumber})
	if err == nil {
		if err := c.rdb.Set(ctx, key, bs, c.ttl).Err(); err != nil {
			log.Printf("identity-cache: set %s: %v", key, err)
		}
	}
	return p, nil
}

func (c *CachedProvider) Authenticate(ctx context.Context, username, password string) (model.Principal, error) {
	return c.inner.Authenticate(ctx, username, password)
}

// decodePrincipal rejects entries that no longer form a valid principal,
// so a corrupted cache value costs one extra lookup and nothing more.
func decodePrincipal(bs []byte) (model.Principal, bool) {
	var cp cachedPrincipal
	if err := json.Unmarshal(bs, &cp); err != nil {
		return model.Principal{}, false
	}
	role, err := model.ParseRole(cp.Role)
	if err != nil {
		return model.Principal{}, false
	}
	p := model.Principal{Username: cp.Username, Role: role, TableNumber: cp.TableNumber}
	if p.Validate() != nil {
		return model.Principal{}, false
	}
	return p, true
}
