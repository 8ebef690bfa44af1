package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marketing-ops/internal/services/social"
	"marketing-ops/internal/store"
	"marketing-ops/models"
	"marketing-ops/monitoring"
	"marketing-ops/utils"

	"github.com/redis/go-redis/v9"
)

// PostSource lists recent posts of one social account.
type PostSource interface {
	AccountID() string
	ListPosts(ctx context.Context, limit int) ([]social.Post, error)
}

type SocialImportReport struct {
	Fetched  int      `json:"fetched"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Dropped  []string `json:"dropped_columns,omitempty"`
}

type SocialService struct {
	Store    *store.Store
	Source   PostSource
	Redis    *redis.Client
	CacheTTL time.Duration
	Breaker  *utils.CircuitBreaker
	now      func() time.Time
}

func NewSocialService(s *store.Store, source PostSource, redisClient *redis.Client, ttl time.Duration) *SocialService {
	return &SocialService{
		Store:    s,
		Source:   source,
		Redis:    redisClient,
		CacheTTL: ttl,
		Breaker:  utils.NewCircuitBreaker("social"),
		now:      utcNow,
	}
}

func (s *SocialService) cacheKey(limit int) string {
	return fmt.Sprintf("social:posts:%s:%d", s.Source.AccountID(), limit)
}

// Posts returns recent posts, served from Redis when a fresh copy exists.
// Cache errors fall through to the API.
func (s *SocialService) Posts(ctx context.Context, limit int) ([]social.Post, error) {
	if s.Source == nil {
		return nil, notConfigured("social account")
	}
	limit = social.ClampLimit(limit)

	useCache := s.Redis != nil && s.CacheTTL > 0
	key := s.cacheKey(limit)
	if useCache {
		posts, err := s.cached(ctx, key)
		switch {
		case err == nil:
			monitoring.TrackSocialCache("hit")
			return posts, nil
		case errors.Is(err, redis.Nil):
			monitoring.TrackSocialCache("miss")
		default:
			monitoring.TrackSocialCache("error")
			slog.Warn("social cache read failed", "key", key, "error", err)
		}
	}

	posts, err := utils.Call(ctx, s.Breaker, func() ([]social.Post, error) {
		return s.Source.ListPosts(ctx, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch social posts: %w", err)
	}

	if useCache {
		if data, err := json.Marshal(posts); err == nil {
			if err := s.Redis.Set(ctx, key, data, s.CacheTTL).Err(); err != nil {
				slog.Warn("social cache write failed", "key", key, "error", err)
			}
		}
	}
	return posts, nil
}

func (s *SocialService) cached(ctx context.Context, key string) ([]social.Post, error) {
	data, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var posts []social.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Import copies posts into historical_content. Posts already imported, by
// external id, and posts without text are skipped.
func (s *SocialService) Import(ctx context.Context, limit int) (*SocialImportReport, error) {
	posts, err := s.Posts(ctx, limit)
	if err != nil {
		return nil, err
	}

	report := &SocialImportReport{Fetched: len(posts)}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	existing, err := s.Store.ExistingExternalIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var records []models.Record
	for _, p := range posts {
		if existing[p.ID] || p.Message == "" {
			report.Skipped++
			continue
		}
		existing[p.ID] = true

		in := models.HistoricalContentInput{
			Channel:    p.Platform,
			Content:    p.Message,
			Source:     p.Platform,
			ExternalID: p.ID,
			Permalink:  p.Permalink,
			Likes:      p.Likes,
			Comments:   p.Comments,
		}
		if !p.CreatedAt.IsZero() {
			in.PublishedAt = &p.CreatedAt
		}
		records = append(records, in.Record(now))
	}

	if len(records) > 0 {
		result, err := s.Store.InsertMany(ctx, "historical_content", records, false)
		if err != nil {
			return nil, fmt.Errorf("import social posts: %w", err)
		}
		report.Imported = len(records)
		report.Dropped = result.Dropped
	}

	slog.Info("Social posts imported", "fetched", report.Fetched, "imported", report.Imported, "skipped", report.Skipped)
	return report, nil
}
