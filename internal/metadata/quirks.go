package metadata

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Raw is a raw yt-dlp metadata object. Corrections read it but never write
// to it; normalization always builds a fresh record.
type Raw = map[string]any

// Field names a normalized output field a correction targets.
type Field string

const (
	FieldTitle    Field = "title"
	FieldUploader Field = "uploader"
	FieldDuration Field = "duration"
)

// Op selects how a correction produces its value.
type Op int

const (
	// OpNullify forces the field to absent.
	OpNullify Op = iota
	// OpRemapFrom copies another raw field's value.
	OpRemapFrom
	// OpRecompute derives the value from the full raw object.
	OpRecompute
)

// Correction is one per-domain fixup applied to raw provider output before
// it is considered canonical.
type Correction struct {
	Field   Field
	Op      Op
	From    string            // raw field name, OpRemapFrom only
	Compute func(raw Raw) any // OpRecompute only
}

// QuirksFor returns the URL the extraction should actually fetch (usually
// u itself, rewritten for x.com) and the corrections to apply to the raw
// result. Some sites expose fields under the wrong key or not at all; the
// rules here paper over the known cases. When a yt-dlp update fixes one of
// these, drop the matching rule.
func QuirksFor(u *url.URL) (string, []Correction) {
	switch CanonicalSite(u.Host) {
	case "x":
		// Same post, twitter.com alias; the twitter rules apply to the
		// rewritten URL. Only the path carries over.
		rewritten := url.URL{Scheme: "https", Host: "twitter.com", Path: u.Path}
		_, rules := QuirksFor(&rewritten)
		return rewritten.String(), rules

	case "twitter":
		rules := []Correction{
			{Field: FieldUploader, Op: OpRemapFrom, From: "uploader_id"},
			{Field: FieldTitle, Op: OpRecompute, Compute: func(raw Raw) any {
				return fmt.Sprintf("X post by %s (%s)", rawString(raw, "uploader_id"), Fingerprint(rawString(raw, "title")))
			}},
		}
		// A /video/{n} suffix means a multi-video post; yt-dlp only
		// resolves the duration reliably for the video at index one.
		if n, ok := multiVideoIndex(u.Path); ok && n != 1 {
			rules = append(rules, Correction{Field: FieldDuration, Op: OpNullify})
		}
		return u.String(), rules

	case "newgrounds", "bilibili":
		return u.String(), []Correction{
			{Field: FieldUploader, Op: OpRemapFrom, From: "uploader"},
		}

	case "tiktok":
		return u.String(), []Correction{
			{Field: FieldUploader, Op: OpRemapFrom, From: "uploader"},
			{Field: FieldTitle, Op: OpRecompute, Compute: func(raw Raw) any {
				return fmt.Sprintf("Tiktok video by %s (%s)", rawString(raw, "uploader"), Fingerprint(rawString(raw, "title")))
			}},
		}
	}

	return u.String(), nil
}

// CanonicalSite reduces a host to its site label: the first label for bare
// domains, the second when a subdomain prefix is present ("www.tiktok.com"
// and "tiktok.com" both yield "tiktok").
func CanonicalSite(host string) string {
	labels := strings.Split(strings.ToLower(host), ".")
	if len(labels) == 2 {
		return labels[0]
	}
	if len(labels) > 2 {
		return labels[1]
	}
	return host
}

func multiVideoIndex(path string) (int, bool) {
	p := strings.TrimRight(path, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 || !strings.HasSuffix(p[:i], "/video") {
		return 0, false
	}
	n, err := strconv.Atoi(p[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func rawString(raw Raw, key string) string {
	s, _ := raw[key].(string)
	return s
}
