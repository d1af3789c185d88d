package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zupos_panel/internal/cache"
)

// Source yields the raw menu tree. Implementations must honour ctx.
type Source interface {
	Fetch(ctx context.Context) ([]Entry, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Entry, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]Entry, error) {
	return f(ctx)
}

// PayloadFunc returns the raw getMenuList body for one session.
type PayloadFunc func(ctx context.Context) ([]byte, error)

// FetchObserver receives the outcome of every PanelSource fetch.
type FetchObserver interface {
	ObserveMenuFetch(result string, duration time.Duration)
}

// Fetch outcomes reported to FetchObserver.
const (
	FetchCached    = "cached"
	FetchOK        = "ok"
	FetchError     = "error"
	FetchMalformed = "malformed"
)

// PanelSource reads the menu tree from the web panel and keeps the raw
// payload in the cache under CacheKey.
type PanelSource struct {
	Payload  PayloadFunc
	Cache    cache.Cache
	CacheKey string
	TTL      time.Duration
	Logger   *slog.Logger
	Observer FetchObserver
}

// CacheKey is the cache key of a session's menu payload.
func CacheKey(sessionID string) string {
	return sessionID + ":menu"
}

func (s *PanelSource) Fetch(ctx context.Context) ([]Entry, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	if s.Cache != nil && s.CacheKey != "" {
		raw, err := s.Cache.Get(ctx, s.CacheKey)
		switch {
		case err == nil:
			entries, decErr := DecodePayload(raw)
			if decErr == nil {
				s.observe(FetchCached, start)
				return entries, nil
			}
			logger.Warn("discarding cached menu payload", "key", s.CacheKey, "error", decErr)
			_ = s.Cache.Delete(ctx, s.CacheKey)
		case !cache.IsNotFound(err):
			logger.Warn("menu cache read failed", "key", s.CacheKey, "error", err)
		}
	}

	if s.Payload == nil {
		s.observe(FetchError, start)
		return nil, errors.New("menu source has no payload function")
	}

	raw, err := s.Payload(ctx)
	if err != nil {
		s.observe(FetchError, start)
		return nil, fmt.Errorf("fetch menu: %w", err)
	}

	entries, err := DecodePayload(raw)
	if err != nil {
		s.observe(FetchMalformed, start)
		return nil, err
	}
	s.observe(FetchOK, start)

	if s.Cache != nil && s.CacheKey != "" && len(entries) > 0 {
		if err := s.Cache.Set(ctx, s.CacheKey, raw, s.TTL); err != nil {
			logger.Warn("menu cache write failed", "key", s.CacheKey, "error", err)
		}
	}
	return entries, nil
}

func (s *PanelSource) observe(result string, start time.Time) {
	if s.Observer != nil {
		s.Observer.ObserveMenuFetch(result, time.Since(start))
	}
}
