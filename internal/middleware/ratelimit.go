package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/book-forum/internal/config"
)

// bucketScript implements the token bucket atomically in Redis. The bucket
// state is a single "tokens:last_refill_ms" string so one round trip reads,
// refills and decides. One token returns per refill interval. The script
// answers {allowed, tokens_left, wait_ms}.
var bucketScript = redis.NewScript(`
local state = redis.call('GET', KEYS[1])
local now = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local refill_ms = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local tokens, last
if state then
	local sep = string.find(state, ':', 1, true)
	tokens = tonumber(string.sub(state, 1, sep - 1))
	last = tonumber(string.sub(state, sep + 1))
end
if tokens == nil or last == nil then
	tokens = burst
	last = now
end

if refill_ms > 0 then
	local earned = math.floor((now - last) / refill_ms)
	if earned > 0 then
		tokens = math.min(burst, tokens + earned)
		last = last + earned * refill_ms
	end
end

local allowed = 0
local wait = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	wait = refill_ms - (now - last)
	if wait < 0 then wait = 0 end
end

redis.call('SET', KEYS[1], string.format('%d:%d', tokens, last), 'EX', ttl)
return {allowed, tokens, wait}
`)

// NewTokenBucket guards the register and login endpoints so passwords and
// invite codes cannot be guessed quickly from one client. The bucket lives
// in Redis so the limit holds across replicas. Redis trouble must never
// lock users out of logging in, so any script error fails open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res, err := bucketScript.Run(c.Request().Context(), rdb,
				[]string{limitKey(cfg, c)},
				time.Now().UnixMilli(),
				cfg.Burst,
				cfg.RefillEvery.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

			if res[0] != 1 {
				retry := (res[2] + 999) / 1000 // round the wait up to whole seconds
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many attempts, slow down"})
			}
			return next(c)
		}
	}
}

// limitKey names the bucket a request draws from. Auth requests carry no
// session, so the default is the client IP; "user" keys an authenticated
// caller by id and "ip_route" splits one client's budget per endpoint.
func limitKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	switch cfg.KeyBy {
	case "user":
		return cfg.Prefix + ":user:" + currentUserID(c)
	case "ip_route":
		return cfg.Prefix + ":" + ip + ":" + c.Request().Method + ":" + c.Path()
	default: // "ip"
		return cfg.Prefix + ":ip:" + ip
	}
}
