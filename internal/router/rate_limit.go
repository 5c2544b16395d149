package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	handlershared "github.com/cwmbran-celtic/clubsocial/internal/http/handlers/shared"
	"github.com/cwmbran-celtic/clubsocial/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

// socialRateLimitRules 生成与发布接口共用窗口配置，key 前缀与提示文案分开
func socialRateLimitRules(cfg config.RateLimitConfig, redisPrefix string) (generate RateLimitRule, publish RateLimitRule) {
	prefix := strings.TrimSpace(redisPrefix)
	if prefix == "" {
		prefix = "cc"
	}
	generate = RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:social_generate", prefix),
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxRequests,
		MessageKey:    "error.social_generate_rate_limited",
	}
	publish = RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:social_publish", prefix),
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxRequests,
		MessageKey:    "error.social_publish_rate_limited",
	}
	return generate, publish
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 频率限制中间件
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Result()
		if err != nil {
			handlershared.RespondError(c, response.CodeInternal, "error.rate_limit_unavailable", err)
			c.Abort()
			return
		}

		values, ok := result.([]interface{})
		if !ok || len(values) < 2 {
			handlershared.RespondError(c, response.CodeInternal, "error.rate_limit_unavailable", nil)
			c.Abort()
			return
		}
		count, ok := toInt64(values[0])
		if !ok {
			handlershared.RespondError(c, response.CodeInternal, "error.rate_limit_unavailable", nil)
			c.Abort()
			return
		}
		ttlSeconds, _ := toInt64(values[1])
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			msgKey := strings.TrimSpace(rule.MessageKey)
			if msgKey == "" {
				msgKey = "error.too_many_requests"
			}
			c.Header("Retry-After", strconv.Itoa(waitSeconds))
			response.Error(c, response.CodeTooManyRequests, handlershared.Message(msgKey))
			c.Abort()
			return
		}

		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndParam 使用路径参数 + IP 作为限流 key
func KeyByIPAndParam(name string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.TrimSpace(c.Param(name))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	default:
		return 0, false
	}
}
