package usecase

import (
	"context"
	"fmt"
	"time"

	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/pkg/apperror"
	"jazzcoasters-backend/pkg/instagram"
	"jazzcoasters-backend/pkg/logger"
)

const (
	instagramCacheKey    = "instagram:recent"
	instagramPlaceholder = "/ig/placeholder.svg"
	instagramProfileURL  = "https://www.instagram.com/thejazzcoasters/"
	instagramSeedSize    = 9
)

// MediaSource is the Instagram Graph API media edge.
type MediaSource interface {
	Configured() bool
	RecentMedia(ctx context.Context) ([]instagram.Media, error)
}

type instagramUsecase struct {
	source   MediaSource
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewInstagramUsecase(source MediaSource, cache domain.Cache, cacheTTL time.Duration) domain.InstagramUsecase {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &instagramUsecase{source: source, cache: cache, cacheTTL: cacheTTL}
}

func (u *instagramUsecase) RecentMedia(ctx context.Context) (*domain.InstagramFeed, error) {
	if u.source == nil || !u.source.Configured() {
		return nil, apperror.NotImplemented("Instagram not configured")
	}

	if u.cache != nil {
		var cached domain.InstagramFeed
		found, err := u.cache.Get(ctx, instagramCacheKey, &cached)
		if err != nil {
			logger.Log.Warn("Instagram cache read failed", "error", err)
		} else if found {
			return &cached, nil
		}
	}

	media, err := u.source.RecentMedia(ctx)
	if err != nil {
		// Serve the placeholder grid; it is not cached so the next request retries upstream.
		logger.Log.Warn("Instagram fetch failed, serving placeholder feed", "error", err)
		return SeedFeed(), nil
	}

	feed := &domain.InstagramFeed{Items: make([]domain.InstagramMedia, 0, len(media))}
	for _, m := range media {
		feed.Items = append(feed.Items, domain.InstagramMedia{
			ID:           m.ID,
			Caption:      m.Caption,
			MediaType:    m.MediaType,
			MediaURL:     m.MediaURL,
			Permalink:    m.Permalink,
			ThumbnailURL: m.ThumbnailURL,
			Timestamp:    m.Timestamp,
		})
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, instagramCacheKey, feed, u.cacheTTL); err != nil {
			logger.Log.Warn("Instagram cache write failed", "error", err)
		}
	}
	return feed, nil
}

// SeedFeed is the placeholder grid shown while the live feed is unavailable.
func SeedFeed() *domain.InstagramFeed {
	items := make([]domain.InstagramMedia, 0, instagramSeedSize)
	for i := 1; i <= instagramSeedSize; i++ {
		items = append(items, domain.InstagramMedia{
			ID:        fmt.Sprintf("seed-%d", i),
			Caption:   "Instagram feed placeholder",
			MediaType: "IMAGE",
			MediaURL:  instagramPlaceholder,
			Permalink: instagramProfileURL,
		})
	}
	return &domain.InstagramFeed{Items: items, Fallback: true}
}
