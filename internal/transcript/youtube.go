package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// UntitledVideo is used when a title lookup fails.
const UntitledVideo = "Untitled Video"

const (
	watchURL   = "https://www.youtube.com/watch"
	playerURL  = "https://www.youtube.com/youtubei/v1/player"
	oembedURL  = "https://www.youtube.com/oembed"
	maxPageLen = 8 << 20

	androidClientVersion = "20.10.38"
)

var (
	// ErrNoTranscript is returned when a video has no caption tracks.
	ErrNoTranscript = errors.New("no transcript available")

	innertubeKeyRe = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
)

// Fetcher retrieves titles and transcripts from YouTube.
type Fetcher struct {
	client    *http.Client
	watchURL  string
	playerURL string
	oembedURL string
	languages []string
}

// NewFetcher creates a Fetcher. Caption tracks in languages are preferred in
// order; English is used when none is given.
func NewFetcher(timeout time.Duration, languages ...string) *Fetcher {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		watchURL:  watchURL,
		playerURL: playerURL,
		oembedURL: oembedURL,
		languages: languages,
	}
}

// Title looks the video title up via oEmbed, returning UntitledVideo on any
// failure.
func (f *Fetcher) Title(ctx context.Context, videoURL string) string {
	q := url.Values{"url": {videoURL}, "format": {"json"}}
	body, err := f.get(ctx, f.oembedURL+"?"+q.Encode())
	if err != nil {
		return UntitledVideo
	}
	var meta struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &meta); err != nil || meta.Title == "" {
		return UntitledVideo
	}
	return meta.Title
}

// Transcript returns the full caption text of a video, segments joined with
// single spaces.
func (f *Fetcher) Transcript(ctx context.Context, videoID string) (string, error) {
	segments, err := f.Segments(ctx, videoID)
	if err != nil {
		return "", err
	}
	return Join(segments), nil
}

// Segments returns the timed caption lines of a video.
func (f *Fetcher) Segments(ctx context.Context, videoID string) ([]Segment, error) {
	key, err := f.innertubeKey(ctx, videoID)
	if err != nil {
		return nil, err
	}
	tracks, err := f.captionTracks(ctx, key, videoID)
	if err != nil {
		return nil, err
	}
	track := pickTrack(tracks, f.languages)

	data, err := f.get(ctx, strings.Replace(track.BaseURL, "&fmt=srv3", "", 1))
	if err != nil {
		return nil, fmt.Errorf("fetch captions: %w", err)
	}
	segments, err := ParseCaptions(data)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%s: %w", videoID, ErrNoTranscript)
	}
	return segments, nil
}

func (f *Fetcher) innertubeKey(ctx context.Context, videoID string) (string, error) {
	page, err := f.get(ctx, f.watchURL+"?v="+url.QueryEscape(videoID))
	if err != nil {
		return "", fmt.Errorf("fetch watch page: %w", err)
	}
	m := innertubeKeyRe.FindSubmatch(page)
	if m == nil {
		if bytes.Contains(page, []byte(`class="g-recaptcha"`)) {
			return "", fmt.Errorf("%s: youtube is rate limiting this address", videoID)
		}
		return "", fmt.Errorf("%s: innertube key not found in watch page", videoID)
	}
	return string(m[1]), nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func (f *Fetcher) captionTracks(ctx context.Context, key, videoID string) ([]captionTrack, error) {
	body, err := json.Marshal(map[string]any{
		"context": map[string]any{
			"client": map[string]string{
				"clientName":    "ANDROID",
				"clientVersion": androidClientVersion,
			},
		},
		"videoId": videoID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", f.playerURL+"?key="+url.QueryEscape(key), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	data, err := f.do(req)
	if err != nil {
		return nil, fmt.Errorf("player api: %w", err)
	}

	var player struct {
		PlayabilityStatus struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
		} `json:"playabilityStatus"`
		Captions struct {
			Renderer struct {
				CaptionTracks []captionTrack `json:"captionTracks"`
			} `json:"playerCaptionsTracklistRenderer"`
		} `json:"captions"`
	}
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	if s := player.PlayabilityStatus.Status; s != "" && s != "OK" {
		return nil, fmt.Errorf("%s: video unplayable: %s %s", videoID, s, player.PlayabilityStatus.Reason)
	}
	tracks := player.Captions.Renderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%s: %w", videoID, ErrNoTranscript)
	}
	return tracks, nil
}

// pickTrack prefers manual tracks over auto-generated ("asr") ones in the
// first matching language, then falls back to the first track.
func pickTrack(tracks []captionTrack, languages []string) captionTrack {
	for _, lang := range languages {
		var asr *captionTrack
		for i, t := range tracks {
			if t.LanguageCode != lang {
				continue
			}
			if t.Kind != "asr" {
				return t
			}
			if asr == nil {
				asr = &tracks[i]
			}
		}
		if asr != nil {
			return *asr
		}
	}
	return tracks[0]
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return f.do(req)
}

func (f *Fetcher) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept-Language", "en-US")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageLen))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, req.URL.Host)
	}
	return data, nil
}
