package middleware

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// CacheConfig configures the response cache middleware
type CacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:       60 * time.Second,
		KeyPrefix: "api:cache:",
	}
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type cacheWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *cacheWriter) Write(data []byte) (int, error) {
	w.body = append(w.body, data...)
	return w.ResponseWriter.Write(data)
}

// Cache returns a gin middleware that caches successful GET responses in
// redis. The cache key includes the caller identity so users never see
// each other's listings.
func Cache(redisClient *redis.Client, cfg CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || redisClient == nil {
			c.Next()
			return
		}

		key := cfg.KeyPrefix + cacheKey(c.Request.URL.Path, c.Request.URL.RawQuery, GetUserID(c))

		ctx := c.Request.Context()
		val, err := redisClient.Get(ctx, key).Bytes()
		if err == nil {
			var cached cachedResponse
			if json.Unmarshal(val, &cached) == nil {
				c.Header("X-Cache", "HIT")
				c.Data(cached.Status, "application/json", []byte(cached.Body))
				c.Abort()
				return
			}
		}

		w := &cacheWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Header("X-Cache", "MISS")

		c.Next()

		status := c.Writer.Status()
		if status != http.StatusOK {
			return
		}
		payload, err := json.Marshal(cachedResponse{Status: status, Body: string(w.body)})
		if err != nil {
			return
		}
		_ = redisClient.Set(ctx, key, payload, cfg.TTL).Err()
	}
}

func cacheKey(path, query, userID string) string {
	sum := sha256.Sum256([]byte(path + "?" + query + "#" + userID))
	return fmt.Sprintf("%x", sum[:16])
}
