package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/rmoralez/pos-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ipEntry tracks request counts per IP within a sliding window.
type ipEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

var (
	loginMap   = make(map[string]*ipEntry)
	loginMapMu sync.Mutex

	apiMap   = make(map[string]*ipEntry)
	apiMapMu sync.Mutex
)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return limiter(loginMap, &loginMapMu, 20, time.Minute,
		"Too many login attempts. Try again in a minute.")
}

// RateLimiter returns a general-purpose sliding-window rate limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return limiter(apiMap, &apiMapMu, limit, window,
		"Too many requests. Try again shortly.")
}

func limiter(entries map[string]*ipEntry, mapMu *sync.Mutex, limit int, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		mapMu.Lock()
		entry, exists := entries[ip]
		if !exists {
			entry = &ipEntry{}
			entries[ip] = entry
		}
		mapMu.Unlock()

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			// Reset sliding window
			entry.count = 0
			entry.windowEnd = now.Add(window)
		}

		entry.count++
		if entry.count > limit {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

// Expired entries are purged periodically so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		purged := purgeMap(loginMap, &loginMapMu) + purgeMap(apiMap, &apiMapMu)
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}

func purgeMap(entries map[string]*ipEntry, mapMu *sync.Mutex) int {
	now := time.Now()
	mapMu.Lock()
	defer mapMu.Unlock()

	purged := 0
	for ip, entry := range entries {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(entries, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}
