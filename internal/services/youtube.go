package services

import (
	"context"
	"fmt"
	urlpkg "net/url"
	"regexp"
	"strings"

	yt "github.com/kkdai/youtube/v2"

	"neetmentor-backend/internal/models"
)

type videoFetcher interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
}

// YouTubeService resolves study video links into display metadata.
type YouTubeService struct {
	client videoFetcher
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{client: &yt.Client{}}
}

// Lookup validates rawURL as a YouTube video link and fetches its metadata.
func (s *YouTubeService) Lookup(ctx context.Context, rawURL string) (*models.VideoResource, error) {
	videoID := extractVideoID(strings.TrimSpace(rawURL))
	if videoID == "" {
		return nil, &ValidationError{Fields: map[string]string{"url": "Not a valid YouTube video link"}}
	}

	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, &NotFoundError{Message: fmt.Sprintf("Video %s is unavailable", videoID)}
	}

	return &models.VideoResource{
		VideoID:         videoID,
		URL:             "https://www.youtube.com/watch?v=" + videoID,
		Title:           video.Title,
		Channel:         video.Author,
		DurationSeconds: int(video.Duration.Seconds()),
		Thumbnail:       bestThumbnail(video.Thumbnails, videoID),
	}, nil
}

func bestThumbnail(thumbs yt.Thumbnails, videoID string) string {
	best := ""
	var bestWidth uint
	for _, t := range thumbs {
		if t.Width >= bestWidth {
			best, bestWidth = t.URL, t.Width
		}
	}
	if best == "" {
		return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", videoID)
	}
	return best
}

var videoIDPattern = regexp.MustCompile(`(?:v=|/v/|youtu\.be/|embed/|shorts/|live/)([a-zA-Z0-9_-]{11})`)

func extractVideoID(raw string) string {
	parsed, err := urlpkg.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(parsed.Path, "/")

	switch host {
	case "youtube.com", "music.youtube.com":
		if v := parsed.Query().Get("v"); len(v) == 11 {
			return v
		}
		parts := strings.Split(path, "/")
		if len(parts) >= 2 {
			switch parts[0] {
			case "shorts", "embed", "v", "live":
				if len(parts[1]) == 11 {
					return parts[1]
				}
			}
		}
	case "youtu.be":
		if candidate := strings.Split(path, "/")[0]; len(candidate) == 11 {
			return candidate
		}
	default:
		return ""
	}

	if m := videoIDPattern.FindStringSubmatch(raw); len(m) > 1 {
		return m[1]
	}
	return ""
}
