package web

import (
	"net/url"
	"strings"
)

// VideoID extracts the video ID from the common YouTube URL shapes:
// watch?v=, youtu.be/<id>, shorts/<id>, and embed/<id>. Returns "" when no
// ID can be determined.
func VideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		return firstSegment(u.Path)
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return firstSegment(strings.TrimPrefix(u.Path, prefix))
			}
		}
	}
	return ""
}

// EmbedURL returns the embeddable player URL for a video, or "" when the
// video ID cannot be determined.
func EmbedURL(raw string) string {
	id := VideoID(raw)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return path
}
