// Package metadata is the dispatch, quirk-correction and normalization
// engine: it routes video URLs to the right provider, corrects known
// per-site field defects, and produces uniform metadata records.
package metadata

import (
	"encoding/json"
	"errors"

	"github.com/Brambles-cat/VoteValidator/internal/videoid"
)

var (
	// ErrNotAVideo covers provider rejections and upstream failures alike;
	// the distinction only matters in logs.
	ErrNotAVideo = errors.New("url doesn't point to a video")

	// ErrDomainNotAccepted is returned for URLs outside the generic
	// extraction allow-list.
	ErrDomainNotAccepted = errors.New("url not from an accepted domain")

	// ErrInvalidURL is returned for input that doesn't parse as an absolute URL.
	ErrInvalidURL = errors.New("invalid url")
)

// Record is the normalized per-video result. Once cached it is never
// mutated.
type Record struct {
	Title      string `json:"title"`
	Uploader   string `json:"uploader"`
	UploadDate int64  `json:"upload_date"`
	Duration   *int64 `json:"duration"`
}

// Result is one slot of a batch response: either a normalized record or a
// structured rejection. Exactly one of the two is set.
type Result struct {
	Record  *Record
	Invalid string
}

// MarshalJSON renders a record as-is and a rejection as {"Invalid": reason}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Invalid != "" {
		return json.Marshal(map[string]string{"Invalid": r.Invalid})
	}
	return json.Marshal(r.Record)
}

// rejectionReason maps a per-item error to the rejection string reported to
// the caller. The strings are part of the public contract; don't reword them.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, videoid.ErrNoVideoID):
		return "No video id present"
	case errors.Is(err, ErrDomainNotAccepted):
		return "Url not from an accepted domain"
	case errors.Is(err, ErrInvalidURL):
		return "Invalid url"
	default:
		return "Url doesn't point to a video"
	}
}
