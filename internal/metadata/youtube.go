package metadata

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/Brambles-cat/VoteValidator/internal/videoid"
	"github.com/Brambles-cat/VoteValidator/pkg/youtube"
)

// fetchYouTube resolves a managed-platform URL through the YouTube Data API.
func (f *Fetcher) fetchYouTube(ctx context.Context, u *url.URL) (*Record, error) {
	id, err := videoid.ExtractYouTubeID(u)
	if err != nil {
		return nil, err
	}

	if rec, ok := f.cache.GetYouTube(id); ok {
		return rec, nil
	}

	key := videoid.VideoUUID("youtube.com", id).String()
	return f.lookup(key, func() (*Record, error) {
		// Re-check under the flight: a concurrent caller may have
		// populated the cache before we got the slot.
		if rec, ok := f.cache.GetYouTube(id); ok {
			return rec, nil
		}

		v, err := f.yt.GetVideo(ctx, id)
		if err != nil {
			if !errors.Is(err, youtube.ErrVideoNotFound) {
				slog.Warn("youtube lookup failed", "id", id, "error", err)
			}
			return nil, ErrNotAVideo
		}

		duration := youtube.ParseDuration(v.ContentDetails.Duration)
		rec := &Record{
			Title:      v.Snippet.Title,
			Uploader:   v.Snippet.ChannelTitle,
			UploadDate: v.PublishedAtUnix(),
			Duration:   &duration,
		}

		f.cache.PutYouTube(id, rec)
		return rec, nil
	})
}

var _ VideoAPI = (*youtube.Client)(nil)
