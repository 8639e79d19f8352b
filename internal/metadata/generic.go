package metadata

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/Brambles-cat/VoteValidator/internal/videoid"
	"github.com/Brambles-cat/VoteValidator/pkg/ytdlp"
)

// fetchGeneric resolves a URL through yt-dlp with quirk corrections.
func (f *Fetcher) fetchGeneric(ctx context.Context, u *url.URL) (*Record, error) {
	domain := videoid.CanonicalDomain(u.Host)
	if !videoid.IsAcceptedDomain(domain) {
		return nil, ErrDomainNotAccepted
	}
	id := videoid.SourceID(u)

	if rec, ok := f.cache.GetGeneric(domain, id); ok {
		return rec, nil
	}

	key := videoid.VideoUUID(domain, id).String()
	return f.lookup(key, func() (*Record, error) {
		if rec, ok := f.cache.GetGeneric(domain, id); ok {
			return rec, nil
		}

		fetchURL, rules := QuirksFor(u)

		info, err := f.ydl.GetInfo(ctx, fetchURL)
		if err != nil {
			slog.Warn("extraction failed", "url", fetchURL, "error", err)
			return nil, ErrNotAVideo
		}

		// Collections resolve to their first entry.
		info, err = info.FirstEntry()
		if err != nil {
			slog.Warn("extraction returned unusable entries", "url", fetchURL, "error", err)
			return nil, ErrNotAVideo
		}

		raw, err := info.RawMap()
		if err != nil {
			slog.Warn("extraction returned unusable json", "url", fetchURL, "error", err)
			return nil, ErrNotAVideo
		}

		rec := normalizeGeneric(raw, rules)

		// Store under the provider-reported identity; it is the canonical
		// form of whatever alias the request used.
		storeDomain, storeID := info.WebpageURLDomain, info.DisplayID
		if storeDomain == "" {
			storeDomain = domain
		}
		if storeID == "" {
			storeID = id
		}
		f.cache.PutGeneric(storeDomain, storeID, rec)
		if storeDomain != domain || storeID != id {
			f.cache.PutGeneric(domain, id, rec)
		}
		return rec, nil
	})
}

// normalizeGeneric builds a fresh record from the raw extraction result plus
// the domain's correction rules. The raw object is never mutated.
func normalizeGeneric(raw Raw, rules []Correction) *Record {
	vals := map[Field]any{
		FieldTitle:    raw["title"],
		FieldUploader: raw["channel"],
		FieldDuration: raw["duration"],
	}

	for _, c := range rules {
		switch c.Op {
		case OpNullify:
			vals[c.Field] = nil
		case OpRemapFrom:
			vals[c.Field] = raw[c.From]
		case OpRecompute:
			vals[c.Field] = c.Compute(raw)
		}
	}

	return &Record{
		Title:      asString(vals[FieldTitle]),
		Uploader:   asString(vals[FieldUploader]),
		UploadDate: parseUploadDate(rawString(raw, "upload_date")),
		Duration:   asSeconds(vals[FieldDuration]),
	}
}

// parseUploadDate interprets yt-dlp's YYYYMMDD calendar date as UTC midnight.
// Missing or malformed dates degrade to zero rather than failing the item.
func parseUploadDate(s string) int64 {
	if s == "" {
		return 0
	}
	ts, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		slog.Warn("unparseable upload date", "value", s)
		return 0
	}
	return ts.Unix()
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asSeconds coerces a raw duration value to whole seconds. JSON numbers
// decode as float64; anything else (notably nil) is an absent duration.
func asSeconds(v any) *int64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

// compile-time check that the real clients satisfy the fetcher's interfaces
var _ Extractor = (*ytdlp.Client)(nil)
