package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// CacheStore defines the interface for a response cache backend. The cache
// is a side channel for repeated-lookup speedups only; every decision the
// service makes must be identical with or without it.
type CacheStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	Clear()
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryCacheStore is a thread-safe in-memory CacheStore with lazy
// expiration.
type InMemoryCacheStore struct {
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

func NewInMemoryCacheStore() *InMemoryCacheStore {
	return &InMemoryCacheStore{
		entries: make(map[string]*cacheEntry),
	}
}

func (s *InMemoryCacheStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return entry.data, true
}

func (s *InMemoryCacheStore) Set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = &cacheEntry{
		data:      append([]byte(nil), value...),
		expiresAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()
}

func (s *InMemoryCacheStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *InMemoryCacheStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*cacheEntry)
	s.mu.Unlock()
}

// bufferingWriter captures the response body so it can be stored.
type bufferingWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// DiscoveryCache returns middleware that caches successful GET responses,
// keyed by request path, for maxAge. It is intended for the discovery
// endpoints, whose service definitions are immutable after process start;
// hook invocations are POSTs and pass through untouched.
func DiscoveryCache(store CacheStore, maxAge time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if store == nil || c.Request().Method != http.MethodGet {
				return next(c)
			}

			key := c.Request().URL.Path
			if body, ok := store.Get(key); ok {
				c.Response().Header().Set("Content-Type", echo.MIMEApplicationJSON)
				c.Response().Header().Set("X-Cache", "HIT")
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
			}

			w := &bufferingWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w

			err := next(c)
			if err == nil && w.status == http.StatusOK && w.buf.Len() > 0 {
				store.Set(key, w.buf.Bytes(), maxAge)
			}
			return err
		}
	}
}
