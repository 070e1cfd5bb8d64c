package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"neetmentor-backend/internal/middleware"
	"neetmentor-backend/internal/models"
	"neetmentor-backend/internal/services"
)

const sourceNote = "note"

type noteRepository interface {
	Create(ctx context.Context, n *models.Note) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Note, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Note, error)
	Update(ctx context.Context, n *models.Note) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type noteExtractor interface {
	ExtractUpload(r io.Reader, filename string) (*services.ImportedNote, error)
}

type NoteHandler struct {
	repo      noteRepository
	extractor noteExtractor
	events    eventPublisher
}

func NewNoteHandler(repo noteRepository, extractor noteExtractor, events eventPublisher) *NoteHandler {
	return &NoteHandler{repo: repo, extractor: extractor, events: events}
}

func applyNote(n *models.Note, req *models.NoteRequest) map[string]string {
	if req.Title != nil {
		n.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if req.Subject != nil {
		n.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Chapter != nil {
		n.Chapter = req.Chapter
	}
	if req.ImageURL != nil {
		n.ImageURL = req.ImageURL
	}
	if req.IsPinned != nil {
		n.IsPinned = *req.IsPinned
	}
	if n.Subject == "" {
		n.Subject = models.DefaultNoteSubject
	}

	fields := map[string]string{}
	if n.Title == "" {
		fields["title"] = "title is required"
	} else if len(n.Title) > 255 {
		fields["title"] = "Must be at most 255 characters"
	}
	return fields
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.NoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	note := &models.Note{UserID: userID}
	if fields := applyNote(note, &req); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	h.create(w, r, note)
}

func (h *NoteHandler) create(w http.ResponseWriter, r *http.Request, note *models.Note) {
	if err := h.repo.Create(r.Context(), note); err != nil {
		internalError(w, r, err, "failed to create note")
		return
	}
	h.events.AnalyticsChanged(r.Context(), note.UserID, sourceNote, "created", note.ID.String())
	writeJSON(w, http.StatusCreated, note)
}

// Import creates a note from an uploaded PDF, DOCX or TXT file in the
// multipart field "file". Optional form fields: title, subject, chapter.
func (h *NoteHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImportBytes+(1<<20))
	if err := r.ParseMultipartForm(services.MaxImportBytes); err != nil {
		validationFailed(w, r, map[string]string{"file": "Expected a multipart upload under 10 MB"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		validationFailed(w, r, map[string]string{"file": "file is required"})
		return
	}
	defer file.Close()

	imported, err := h.extractor.ExtractUpload(file, header.Filename)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	note := &models.Note{UserID: middleware.GetUserID(r.Context()), Content: imported.Content}
	title := imported.Title
	if t := strings.TrimSpace(r.FormValue("title")); t != "" {
		title = t
	}
	req := models.NoteRequest{Title: &title}
	if s := r.FormValue("subject"); s != "" {
		req.Subject = &s
	}
	if c := r.FormValue("chapter"); c != "" {
		req.Chapter = &c
	}
	if fields := applyNote(note, &req); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	h.create(w, r, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.repo.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		internalError(w, r, err, "failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) load(w http.ResponseWriter, r *http.Request) (*models.Note, bool) {
	id, ok := idParam(w, r)
	if !ok {
		return nil, false
	}
	note, err := h.repo.GetByID(r.Context(), id, middleware.GetUserID(r.Context()))
	if errors.Is(err, pgx.ErrNoRows) {
		notFound(w, r, "Note")
		return nil, false
	}
	if err != nil {
		internalError(w, r, err, "failed to load note")
		return nil, false
	}
	return note, true
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	note, ok := h.load(w, r)
	if !ok {
		return
	}

	var req models.NoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := applyNote(note, &req); len(fields) > 0 {
		validationFailed(w, r, fields)
		return
	}

	if err := h.repo.Update(r.Context(), note); err != nil {
		internalError(w, r, err, "failed to update note")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	userID := middleware.GetUserID(r.Context())

	deleted, err := h.repo.Delete(r.Context(), id, userID)
	if err != nil {
		internalError(w, r, err, "failed to delete note")
		return
	}
	if !deleted {
		notFound(w, r, "Note")
		return
	}

	h.events.AnalyticsChanged(r.Context(), userID, sourceNote, "deleted", id.String())
	w.WriteHeader(http.StatusNoContent)
}
