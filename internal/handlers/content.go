package handlers

import (
	"context"
	"net/http"
	"strings"

	"neetmentor-backend/internal/models"
)

type videoLookup interface {
	Lookup(ctx context.Context, rawURL string) (*models.VideoResource, error)
}

// ContentHandler validates external study resources.
type ContentHandler struct {
	videos videoLookup
}

func NewContentHandler(videos videoLookup) *ContentHandler {
	return &ContentHandler{videos: videos}
}

func (h *ContentHandler) ValidateYouTube(w http.ResponseWriter, r *http.Request) {
	var req models.ResourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		validationFailed(w, r, map[string]string{"url": "url is required"})
		return
	}

	video, err := h.videos.Lookup(r.Context(), req.URL)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}
