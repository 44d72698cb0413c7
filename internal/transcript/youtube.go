package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"
)

var allowedHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"youtu.be":                 true,
	"www.youtube-nocookie.com": true,
	"youtube-nocookie.com":     true,
}

// ParseVideoURL validates an http(s) URL and extracts the YouTube video id.
func ParseVideoURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if !allowedHosts[strings.ToLower(u.Hostname())] {
		return "", fmt.Errorf("%w: %q is not a YouTube host", ErrInvalidURL, u.Hostname())
	}

	id, err := youtube.ExtractVideoID(u.String())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return id, nil
}

// YouTubeSource fetches metadata and captions through the public YouTube
// endpoints.
type YouTubeSource struct {
	client   *youtube.Client
	language string
}

func NewYouTubeSource(language string, httpClient *http.Client) *YouTubeSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &YouTubeSource{
		client:   &youtube.Client{HTTPClient: httpClient},
		language: language,
	}
}

func (s *YouTubeSource) Fetch(ctx context.Context, videoID string) (*Video, error) {
	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: video %s: %v", ErrFetchFailed, videoID, err)
	}

	segments, err := s.client.GetTranscriptCtx(ctx, video, s.language)
	if err != nil {
		if errors.Is(err, youtube.ErrTranscriptDisabled) {
			return nil, fmt.Errorf("%w: video %s", ErrNoTranscript, videoID)
		}
		return nil, fmt.Errorf("%w: transcript %s: %v", ErrFetchFailed, videoID, err)
	}

	out := &Video{
		Metadata: Metadata{
			VideoID:       video.ID,
			URL:           "https://www.youtube.com/watch?v=" + video.ID,
			Author:        video.Author,
			Title:         video.Title,
			LengthSeconds: lengthSeconds(video.Duration),
		},
		Segments: make([]string, 0, len(segments)),
	}
	for _, seg := range segments {
		out.Segments = append(out.Segments, seg.Text)
	}
	return out, nil
}
