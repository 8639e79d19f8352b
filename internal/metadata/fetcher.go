package metadata

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Brambles-cat/VoteValidator/internal/videoid"
	"github.com/Brambles-cat/VoteValidator/pkg/youtube"
	"github.com/Brambles-cat/VoteValidator/pkg/ytdlp"
)

// VideoAPI is the managed-platform lookup the fetcher depends on.
// *youtube.Client satisfies it.
type VideoAPI interface {
	GetVideo(ctx context.Context, videoID string) (*youtube.Video, error)
}

// Extractor is the generic multi-site extraction the fetcher depends on.
// *ytdlp.Client satisfies it.
type Extractor interface {
	GetInfo(ctx context.Context, url string, extraArgs ...string) (*ytdlp.Info, error)
}

// Fetcher routes each URL to the right provider family, applies quirk
// corrections, and serves repeat lookups from the injected cache.
type Fetcher struct {
	yt      VideoAPI
	ydl     Extractor
	cache   *Cache
	workers int
	flight  singleflight.Group
}

func NewFetcher(yt VideoAPI, ydl Extractor, cache *Cache, workers int) *Fetcher {
	if workers <= 0 {
		workers = 4
	}
	return &Fetcher{
		yt:      yt,
		ydl:     ydl,
		cache:   cache,
		workers: workers,
	}
}

// FetchAll resolves a batch of URLs. The result slice matches the input
// order, one slot per URL; a failing item becomes a rejection in its slot
// and never disturbs its siblings.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, raw := range urls {
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, raw)
			return nil
		})
	}
	// Workers never return errors; rejections land in their result slot.
	_ = g.Wait()

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, raw string) Result {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Result{Invalid: rejectionReason(ErrInvalidURL)}
	}

	var rec *Record
	if videoid.IsYouTubeHost(u.Host) {
		rec, err = f.fetchYouTube(ctx, u)
	} else {
		rec, err = f.fetchGeneric(ctx, u)
	}
	if err != nil {
		return Result{Invalid: rejectionReason(err)}
	}
	return Result{Record: rec}
}

// lookup collapses concurrent fetches for the same identity key so at most
// one upstream call is in flight per video.
func (f *Fetcher) lookup(key string, fetch func() (*Record, error)) (*Record, error) {
	v, err, _ := f.flight.Do(key, func() (any, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}
