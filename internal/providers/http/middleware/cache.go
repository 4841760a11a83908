package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/cache"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/logging"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/shared/utils"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// CacheHeader is set to "HIT" on responses served from the cache.
const CacheHeader = "X-Foundation-Cache"

// CacheConfig configures the response cache layer.
type CacheConfig struct {
	Store   cache.Cache
	TTL     time.Duration
	Metrics *monitoring.Metrics
	// IgnoreHeaders are left out of the cache key. Nil means RequestIDHeader,
	// whose value differs on every request.
	IgnoreHeaders []string
}

type cachedResponse struct {
	Status int         `json:"status"`
	Reason string      `json:"reason"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// Cache serves repeated GET requests from a store. Only 2xx responses are
// stored. Store failures are logged and the request goes to the network.
func Cache(cfg CacheConfig) client.Middleware {
	hasher := utils.DefaultHasher()
	ignore := cfg.IgnoreHeaders
	if ignore == nil {
		ignore = []string{RequestIDHeader}
	}

	return client.MiddlewareFunc(func(next client.Handler) client.Handler {
		return func(ctx context.Context, method, url string, opts client.Options) (*client.Response, error) {
			if method != http.MethodGet || cfg.Store == nil {
				return next(ctx, method, url, opts)
			}

			key, err := cacheKey(hasher, method, url, opts, ignore)
			if err != nil {
				return next(ctx, method, url, opts)
			}

			if resp, ok := lookup(ctx, cfg.Store, key); ok {
				if cfg.Metrics != nil {
					cfg.Metrics.RecordCacheHit()
				}
				return resp, nil
			}
			if cfg.Metrics != nil {
				cfg.Metrics.RecordCacheMiss()
			}

			resp, err := next(ctx, method, url, opts)
			if err != nil || resp == nil || !resp.IsSuccess() {
				return resp, err
			}
			store(ctx, cfg, key, resp)
			return resp, nil
		}
	})
}

// cacheKey hashes the request identity. Query and headers are normalised, so
// the same logical values key the same entry whatever map type carries them.
func cacheKey(hasher *utils.Hasher, method, url string, opts client.Options, ignore []string) (string, error) {
	query, err := client.Values(opts[client.KeyQuery])
	if err != nil {
		return "", err
	}
	headers, err := headersOf(opts)
	if err != nil {
		return "", err
	}
	for _, name := range ignore {
		headers.Del(name)
	}
	return hasher.HashJSON(map[string]interface{}{
		"method":  method,
		"url":     url,
		"query":   query,
		"headers": headers,
	})
}

func lookup(ctx context.Context, store cache.Cache, key string) (*client.Response, bool) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		logging.L().Warn("cache lookup failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry cachedResponse
	if err := sonic.Unmarshal(data, &entry); err != nil {
		logging.L().Warn("cache entry unreadable", zap.Error(err))
		return nil, false
	}

	header := entry.Header
	if header == nil {
		header = http.Header{}
	}
	header.Set(CacheHeader, "HIT")
	return client.NewResponse(entry.Status, entry.Reason, header, entry.Body), true
}

func store(ctx context.Context, cfg CacheConfig, key string, resp *client.Response) {
	var body []byte
	if resp.Body != nil {
		body = resp.Body.Bytes()
	}
	data, err := sonic.Marshal(cachedResponse{
		Status: resp.StatusCode,
		Reason: resp.Reason,
		Header: resp.Header,
		Body:   body,
	})
	if err != nil {
		logging.L().Warn("cache entry not encodable", zap.Error(err))
		return
	}
	if err := cfg.Store.Set(ctx, key, data, cfg.TTL); err != nil {
		logging.L().Warn("cache store failed", zap.Error(err))
	}
}
