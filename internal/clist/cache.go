package clist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/contesthub/internal/model"
)

const (
	listingCacheKey = "contesthub:clist:listings"
	// DefaultCacheTTL は一覧キャッシュの既定の有効期間。
	DefaultCacheTTL = 60 * time.Second
)

// ListingCache はCLISTの取得結果を一時保存するキャッシュ。
type ListingCache interface {
	// Load はキャッシュされた一覧を返す。未保存または期限切れの場合はokがfalseとなる。
	Load(ctx context.Context) (listings []model.RawContest, ok bool, err error)
	// Store は一覧を保存する。
	Store(ctx context.Context, listings []model.RawContest) error
}

// listingSnapshot はキャッシュに保存する一覧と取得時刻。
type listingSnapshot struct {
	Listings  []model.RawContest `json:"listings"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// RedisCache はRedisに一覧を保存するListingCache。
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache はRedisCacheを生成する。ttlが0以下の場合は DefaultCacheTTL を使う。
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Load はキャッシュされた一覧を返す。
func (c *RedisCache) Load(ctx context.Context) ([]model.RawContest, bool, error) {
	data, err := c.client.Get(ctx, listingCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read listing cache: %w", err)
	}

	var snapshot listingSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("failed to decode listing cache: %w", err)
	}
	return snapshot.Listings, true, nil
}

// Store は一覧をTTL付きで保存する。
func (c *RedisCache) Store(ctx context.Context, listings []model.RawContest) error {
	data, err := json.Marshal(listingSnapshot{Listings: listings, FetchedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode listing cache: %w", err)
	}
	if err := c.client.Set(ctx, listingCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write listing cache: %w", err)
	}
	return nil
}

// Source はコンテスト一覧の取得元。
type Source interface {
	ListUpcoming(ctx context.Context, endAfter time.Time) ([]model.RawContest, error)
}

// CachedSource は取得元の前段にキャッシュを置くSource。
// キャッシュの読み書きに失敗しても取得元の結果を返す。
type CachedSource struct {
	source Source
	cache  ListingCache
	logger *slog.Logger
}

// NewCachedSource はCachedSourceを生成する。
func NewCachedSource(source Source, cache ListingCache, logger *slog.Logger) *CachedSource {
	return &CachedSource{source: source, cache: cache, logger: logger}
}

// ListUpcoming はキャッシュにあればそれを返し、なければ取得元から取得して保存する。
// 取得元のエラーはキャッシュせずにそのまま返す。
func (s *CachedSource) ListUpcoming(ctx context.Context, endAfter time.Time) ([]model.RawContest, error) {
	listings, ok, err := s.cache.Load(ctx)
	if err != nil {
		s.logger.Warn("コンテスト一覧キャッシュの読み込みに失敗しました",
			slog.String("error", err.Error()),
		)
	}
	if ok {
		return listings, nil
	}

	listings, err = s.source.ListUpcoming(ctx, endAfter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Store(ctx, listings); err != nil {
		s.logger.Warn("コンテスト一覧キャッシュの保存に失敗しました",
			slog.String("error", err.Error()),
		)
	}
	return listings, nil
}

// compile-time interface check
var (
	_ ListingCache = (*RedisCache)(nil)
	_ Source       = (*Client)(nil)
	_ Source       = (*CachedSource)(nil)
)
