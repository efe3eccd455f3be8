package services

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	yt "github.com/kkdai/youtube/v2"
)

// YouTubeService resolves transcripts and metadata for YouTube-backed
// materials, which feed AI generation the same way uploaded files do.
type YouTubeService struct {
	httpClient    *http.Client
	transcriptAPI *ytapi.YouTubeTranscriptApi
	ytClient      *yt.Client
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
		ytClient:      &yt.Client{},
	}
}

// GetTranscript fetches captions for a video, preferring English tracks and
// falling back to whatever language is available.
func (s *YouTubeService) GetTranscript(videoID string) (string, error) {
	transcript, err := s.transcriptAPI.GetTranscript(videoID, []string{"en", "en-US", "en-GB"})
	if err != nil {
		transcript, err = s.transcriptAPI.GetTranscript(videoID, nil)
		if err != nil {
			return "", fmt.Errorf("no subtitles available for video %s: %w", videoID, err)
		}
	}

	if len(transcript.Entries) == 0 {
		return "", fmt.Errorf("subtitle track is empty")
	}

	var b strings.Builder
	for _, entry := range transcript.Entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString(" ")
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "", fmt.Errorf("subtitle text resolved to empty content")
	}
	return cleaned, nil
}

// GetVideoTitle resolves the video title for material display.
func (s *YouTubeService) GetVideoTitle(videoURL string) (string, error) {
	video, err := s.ytClient.GetVideo(videoURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch video metadata: %w", err)
	}
	return video.Title, nil
}

// ExtractVideoID pulls the video ID out of the common YouTube URL shapes.
func ExtractVideoID(url string) (string, error) {
	for _, marker := range []string{"v=", "youtu.be/", "/embed/", "/shorts/"} {
		if idx := strings.Index(url, marker); idx >= 0 {
			id := url[idx+len(marker):]
			if amp := strings.IndexAny(id, "&?#"); amp >= 0 {
				id = id[:amp]
			}
			if id != "" {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("could not extract video ID from %q", url)
}
