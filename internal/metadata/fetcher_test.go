package metadata

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Brambles-cat/VoteValidator/pkg/youtube"
	"github.com/Brambles-cat/VoteValidator/pkg/ytdlp"
)

type fakeVideoAPI struct {
	mu     sync.Mutex
	calls  int
	videos map[string]*youtube.Video
}

func (f *fakeVideoAPI) GetVideo(ctx context.Context, id string) (*youtube.Video, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	v, ok := f.videos[id]
	if !ok {
		return nil, youtube.ErrVideoNotFound
	}
	return v, nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls []string
	infos map[string]string // fetch URL -> raw yt-dlp JSON
}

func (f *fakeExtractor) GetInfo(ctx context.Context, url string, extraArgs ...string) (*ytdlp.Info, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	raw, ok := f.infos[url]
	if !ok {
		return nil, &ytdlp.ExecError{Cmd: "yt-dlp", Args: []string{url}, ExitCode: 1}
	}
	info := &ytdlp.Info{Raw: []byte(raw)}
	if err := json.Unmarshal([]byte(raw), info); err != nil {
		return nil, err
	}
	return info, nil
}

func ytVideo(title, channel, published, duration string) *youtube.Video {
	v := &youtube.Video{}
	v.Snippet.Title = title
	v.Snippet.ChannelTitle = channel
	v.Snippet.PublishedAt = published
	v.ContentDetails.Duration = duration
	return v
}

func newTestFetcher(api *fakeVideoAPI, ext *fakeExtractor) *Fetcher {
	if api == nil {
		api = &fakeVideoAPI{videos: map[string]*youtube.Video{}}
	}
	if ext == nil {
		ext = &fakeExtractor{infos: map[string]string{}}
	}
	return NewFetcher(api, ext, NewCache(), 4)
}

func TestFetchAll_YouTube(t *testing.T) {
	api := &fakeVideoAPI{videos: map[string]*youtube.Video{
		"9RT4lfvVFhA": ytVideo("A video", "A channel", "2024-05-01T12:00:00Z", "PT1H2M3S"),
	}}
	f := newTestFetcher(api, nil)

	res := f.FetchAll(context.Background(), []string{"https://www.youtube.com/watch?v=9RT4lfvVFhA"})
	require.Len(t, res, 1)
	require.Empty(t, res[0].Invalid)
	require.Equal(t, "A video", res[0].Record.Title)
	require.Equal(t, "A channel", res[0].Record.Uploader)
	require.Equal(t, int64(1714564800), res[0].Record.UploadDate)
	require.NotNil(t, res[0].Record.Duration)
	require.Equal(t, int64(3723), *res[0].Record.Duration)
}

func TestFetchAll_YouTubeCacheHit(t *testing.T) {
	api := &fakeVideoAPI{videos: map[string]*youtube.Video{
		"abc123": ytVideo("v", "c", "2024-05-01T12:00:00Z", "PT45S"),
	}}
	f := newTestFetcher(api, nil)

	// Same video via watch and shortlink form: one upstream call total.
	_ = f.FetchAll(context.Background(), []string{"https://www.youtube.com/watch?v=abc123"})
	_ = f.FetchAll(context.Background(), []string{"https://youtu.be/abc123"})

	require.Equal(t, 1, api.calls)
}

func TestFetchAll_GenericCacheHit(t *testing.T) {
	ext := &fakeExtractor{infos: map[string]string{
		"https://vimeo.com/12345": `{"display_id":"12345","title":"clip","channel":"maker","upload_date":"20240501","duration":45,"webpage_url_domain":"vimeo.com"}`,
	}}
	f := newTestFetcher(nil, ext)

	_ = f.FetchAll(context.Background(), []string{"https://vimeo.com/12345"})
	_ = f.FetchAll(context.Background(), []string{"https://vimeo.com/12345"})

	require.Len(t, ext.calls, 1)
}

func TestFetchAll_GenericNormalization(t *testing.T) {
	ext := &fakeExtractor{infos: map[string]string{
		"https://vimeo.com/12345": `{"display_id":"12345","title":"clip","channel":"maker","upload_date":"20240501","duration":45,"webpage_url_domain":"vimeo.com"}`,
	}}
	f := newTestFetcher(nil, ext)

	res := f.FetchAll(context.Background(), []string{"https://vimeo.com/12345"})
	require.Len(t, res, 1)
	require.Empty(t, res[0].Invalid)
	rec := res[0].Record
	require.Equal(t, "clip", rec.Title)
	require.Equal(t, "maker", rec.Uploader)
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Unix(), rec.UploadDate)
	require.NotNil(t, rec.Duration)
	require.Equal(t, int64(45), *rec.Duration)
}

func TestFetchAll_TwitterQuirks(t *testing.T) {
	ext := &fakeExtractor{infos: map[string]string{
		"https://twitter.com/abc/status/123": `{"display_id":"123","title":"hello","uploader_id":"abc","channel":null,"upload_date":"20240501","duration":10,"webpage_url_domain":"twitter.com"}`,
	}}
	f := newTestFetcher(nil, ext)

	res := f.FetchAll(context.Background(), []string{"https://twitter.com/abc/status/123"})
	require.Empty(t, res[0].Invalid)
	rec := res[0].Record
	require.Equal(t, "abc", rec.Uploader)
	require.Equal(t, "X post by abc ("+Fingerprint("hello")+")", rec.Title)
	require.NotNil(t, rec.Duration)
	require.Equal(t, int64(10), *rec.Duration)
}

func TestFetchAll_XRewrittenToTwitter(t *testing.T) {
	ext := &fakeExtractor{infos: map[string]string{
		"https://twitter.com/abc/status/123": `{"display_id":"123","title":"hello","uploader_id":"abc","upload_date":"20240501","duration":10,"webpage_url_domain":"twitter.com"}`,
	}}
	f := newTestFetcher(nil, ext)

	res := f.FetchAll(context.Background(), []string{"https://x.com/abc/status/123"})
	require.Empty(t, res[0].Invalid)
	require.Equal(t, []string{"https://twitter.com/abc/status/123"}, ext.calls)
	require.Equal(t, "X post by abc ("+Fingerprint("hello")+")", res[0].Record.Title)
}

func TestFetchAll_TwitterMultiVideoNullsDuration(t *testing.T) {
	ext := &fakeExtractor{infos: map[string]string{
		"https://twitter.com/abc/status/123/video/2": `{"display_id":"123","title":"hi","uploader_id":"abc","upload_date":"20240501","duration":10,"webpage_url_domain":"twitter.com"}`,
	}}
	f := newTestFetcher(nil, ext)

	res := f.FetchAll(context.Background(), []string{"https://twitter.com/abc/status/123/video/2"})
	require.Empty(t, res[0].Invalid)
	require.Nil(t, res[0].Record.Duration)
}

func TestFetchAll_PlaylistTakesFirstEntry(t *testing.T) {
	ext := &fakeExtractor{infos: map[string]string{
		"https://pony.tube/w/series": `{"title":"series","entries":[{"display_id":"ep1","title":"episode one","channel":"pony","upload_date":"20230110","duration":90,"webpage_url_domain":"pony.tube"},{"display_id":"ep2","title":"episode two"}]}`,
	}}
	f := newTestFetcher(nil, ext)

	res := f.FetchAll(context.Background(), []string{"https://pony.tube/w/series"})
	require.Empty(t, res[0].Invalid)
	require.Equal(t, "episode one", res[0].Record.Title)
	require.Equal(t, "pony", res[0].Record.Uploader)
}

func TestFetchAll_Rejections(t *testing.T) {
	f := newTestFetcher(nil, nil)

	res := f.FetchAll(context.Background(), []string{
		"https://example.org/video/1",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=unknown",
		"https://vimeo.com/404",
		"not a url",
	})
	require.Len(t, res, 5)
	require.Equal(t, "Url not from an accepted domain", res[0].Invalid)
	require.Equal(t, "No video id present", res[1].Invalid)
	require.Equal(t, "Url doesn't point to a video", res[2].Invalid)
	require.Equal(t, "Url doesn't point to a video", res[3].Invalid)
	require.Equal(t, "Invalid url", res[4].Invalid)
}

func TestFetchAll_FailureIsolatedAndOrderPreserved(t *testing.T) {
	api := &fakeVideoAPI{videos: map[string]*youtube.Video{
		"abc123": ytVideo("first", "c", "2024-05-01T12:00:00Z", "PT45S"),
	}}
	ext := &fakeExtractor{infos: map[string]string{
		"https://vimeo.com/12345": `{"display_id":"12345","title":"third","channel":"maker","upload_date":"20240501","duration":45,"webpage_url_domain":"vimeo.com"}`,
	}}
	f := newTestFetcher(api, ext)

	res := f.FetchAll(context.Background(), []string{
		"https://youtu.be/abc123",
		"https://example.org/video/1",
		"https://vimeo.com/12345",
	})
	require.Len(t, res, 3)
	require.Equal(t, "first", res[0].Record.Title)
	require.Equal(t, "Url not from an accepted domain", res[1].Invalid)
	require.Equal(t, "third", res[2].Record.Title)
}

func TestFetchAll_ConcurrentSameIdentitySingleFetch(t *testing.T) {
	api := &fakeVideoAPI{videos: map[string]*youtube.Video{
		"abc123": ytVideo("v", "c", "2024-05-01T12:00:00Z", "PT45S"),
	}}
	f := newTestFetcher(api, nil)

	urls := make([]string, 8)
	for i := range urls {
		urls[i] = "https://www.youtube.com/watch?v=abc123"
	}
	res := f.FetchAll(context.Background(), urls)
	for _, r := range res {
		require.Empty(t, r.Invalid)
	}
	require.Equal(t, 1, api.calls)
}
