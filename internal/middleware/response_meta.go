package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaKey      = "response_meta"
	metaStartKey = "response_meta_start"
)

// WithResponseMeta stamps the request start so handlers can report processing time.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStartKey, time.Now())
		c.Next()
	}
}

// SetMeta attaches a value to the response meta block.
func SetMeta(c *gin.Context, key string, value interface{}) {
	meta := c.GetStringMap(metaKey)
	if meta == nil {
		meta = map[string]interface{}{}
		c.Set(metaKey, meta)
	}
	meta[key] = value
}

// SetCacheHit records whether the payload came from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, "cache_hit", hit)
}

// ResponseMeta snapshots the collected meta. processing_time_ms is measured
// from WithResponseMeta and omitted when that middleware is not installed.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	meta := map[string]interface{}{}
	for k, v := range c.GetStringMap(metaKey) {
		meta[k] = v
	}
	if start, ok := c.Get(metaStartKey); ok {
		if t, ok := start.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(t).Milliseconds()
		}
	}
	return meta
}
