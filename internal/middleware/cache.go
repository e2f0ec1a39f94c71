package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/book-forum/internal/config"
)

// cachedResponse is what a cache entry stores: the body plus its content
// type. Only 200 responses are cached, so the status is implicit. The body
// field round-trips through base64 inside the JSON envelope.
type cachedResponse struct {
	ContentType string `json:"ct"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body so a miss can be stored after the
// handler has already streamed it to the client.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// NewRedisCache caches successful GET responses of the public browse
// endpoints. Every anonymous visitor sees the same community, topic and
// profile listings, so whole responses can be shared. Session-aware routes
// must never sit behind this middleware. A Redis failure falls through to
// the handler.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := browseCacheKey(cfg.Prefix, c)

			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, hit.ContentType, hit.Body)
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK {
				return nil
			}
			if cfg.MaxBodyBytes > 0 && rec.buf.Len() > cfg.MaxBodyBytes {
				return nil
			}

			entry, err := json.Marshal(cachedResponse{
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
			})
			if err == nil {
				// Detached context: the store must not be cancelled along
				// with the request it was derived from.
				_ = rdb.Set(context.Background(), key, entry, cfg.TTL).Err()
			}
			return nil
		}
	}
}

// browseCacheKey derives the entry key from the matched route and the raw
// query, so /v1/search/communities entries vary by q while id routes vary
// by path. Hashing keeps keys short and uniform.
func browseCacheKey(prefix string, c echo.Context) string {
	sum := sha256.Sum256([]byte(c.Request().URL.Path + "?" + c.Request().URL.RawQuery))
	return prefix + ":" + hex.EncodeToString(sum[:16])
}
