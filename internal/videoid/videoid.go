// Package videoid turns video URLs into stable (domain, id) identity keys
// without touching the network.
package videoid

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrNoVideoID is returned when no video id can be recovered from a URL.
var ErrNoVideoID = errors.New("no video id present")

// Hosts served by the managed YouTube Data API rather than yt-dlp.
// Matched exactly; anything else goes down the generic extraction path.
var youtubeHosts = map[string]struct{}{
	"m.youtube.com":   {},
	"www.youtube.com": {},
	"youtube.com":     {},
	"youtu.be":        {},
}

// Domains the generic extraction path will accept. Keep in sync with the
// extractor allow-list passed to yt-dlp.
var acceptedDomains = map[string]struct{}{
	"dailymotion.com":  {},
	"pony.tube":        {},
	"vimeo.com":        {},
	"bilibili.com":     {},
	"thishorsie.rocks": {},
	"tiktok.com":       {},
	"twitter.com":      {},
	"x.com":            {},
	"odysee.com":       {},
	"newgrounds.com":   {},
}

var (
	livePathRe  = regexp.MustCompile(`^/live/([a-zA-Z0-9_-]+)`)
	shortPathRe = regexp.MustCompile(`^/([a-zA-Z0-9_-]+)`)
)

// IsYouTubeHost reports whether host belongs to the managed YouTube family.
func IsYouTubeHost(host string) bool {
	_, ok := youtubeHosts[normalizeHost(host)]
	return ok
}

// IsAcceptedDomain reports whether a canonical domain is on the generic
// extraction allow-list.
func IsAcceptedDomain(domain string) bool {
	_, ok := acceptedDomains[domain]
	return ok
}

// ExtractYouTubeID extracts the video id from a YouTube-family URL.
//
// It tries, in order:
//   - the v query parameter on the canonical watch path,
//     eg. https://www.youtube.com/watch?v=9RT4lfvVFhA
//   - a livestream path, eg. https://www.youtube.com/live/Q8k4UTf8jiI
//   - a shortened path, eg. https://youtu.be/9RT4lfvVFhA
//
// Returns ErrNoVideoID if none match.
func ExtractYouTubeID(u *url.URL) (string, error) {
	if u.Path == "/watch" {
		if v := u.Query().Get("v"); v != "" {
			return v, nil
		}
		return "", ErrNoVideoID
	}

	if m := livePathRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], nil
	}
	if m := shortPathRe.FindStringSubmatch(u.Path); m != nil {
		return m[1], nil
	}

	return "", ErrNoVideoID
}

// CanonicalDomain normalizes a URL host to its registrable domain: lowercase,
// port and trailing dot stripped, and one leading subdomain label removed when
// more than two labels are present. "www.example.com" becomes "example.com";
// "pony.tube" is left alone.
func CanonicalDomain(host string) string {
	h := normalizeHost(host)
	if strings.Count(h, ".") > 1 {
		_, rest, _ := strings.Cut(h, ".")
		return rest
	}
	return h
}

// SourceID returns the identity id for a generic extraction URL: the last
// non-empty path segment, with any trailing slash stripped.
func SourceID(u *url.URL) string {
	p := strings.TrimRight(u.Path, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// NamespaceUUIDForDomain returns a deterministic UUIDv5 namespace for a domain.
func NamespaceUUIDForDomain(domain string) uuid.UUID {
	d := strings.TrimSpace(strings.ToLower(domain))
	d = strings.TrimSuffix(d, ".")
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(d))
}

// VideoUUID returns a deterministic UUIDv5 for a (domain, videoID) identity
// key. Two URLs with equal VideoUUID are assumed to name the same video.
func VideoUUID(domain string, videoID string) uuid.UUID {
	ns := NamespaceUUIDForDomain(domain)
	return uuid.NewSHA1(ns, []byte(strings.TrimSpace(videoID)))
}

func normalizeHost(hostport string) string {
	h := strings.TrimSpace(strings.ToLower(hostport))
	if h == "" {
		return ""
	}
	// url.URL.Host may include port.
	if strings.Contains(h, ":") {
		if parsed, err := url.Parse("//" + h); err == nil {
			if parsed.Hostname() != "" {
				h = parsed.Hostname()
			}
		}
	}
	h = strings.TrimSuffix(h, ".")
	return h
}
