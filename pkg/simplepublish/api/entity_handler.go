package api

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

// entityHandler serves one publishable collection. The same handler is
// mounted once per collection; per-kind behavior comes from the KindSpec
// the service resolves for the kind.
type entityHandler struct {
	s    *Server
	kind simplepublish.EntityKind
}

func (s *Server) newEntityHandler(kind simplepublish.EntityKind) *entityHandler {
	return &entityHandler{s: s, kind: kind}
}

// Routes returns the routes for one collection.
func (h *entityHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{slug}", h.GetBySlug)

	r.Group(func(r chi.Router) {
		r.Use(RequireElevated)

		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.Get("/admin/{id}", h.AdminGet)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/toggle-status", h.ToggleStatus)
		r.Patch("/{id}/archive", h.Archive)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// List returns a page of the collection. Visibility and pagination depend on
// the caller's role; the planner decides both.
func (h *entityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.s.service.ListEntities(r.Context(), simplepublish.ListEntitiesRequest{
		Kind:   h.kind,
		Params: r.URL.Query(),
		Role:   RoleFromContext(r.Context()),
	})
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "entries retrieved", ListData{
		Items:      page.Items,
		Pagination: page.Pagination,
		TotalItems: page.TotalItems,
	})
}

// GetBySlug returns one entry by slug. Non-elevated callers only see
// publicly visible statuses.
func (h *entityHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	entity, err := h.s.service.GetEntityBySlug(r.Context(), h.kind, slug, RoleFromContext(r.Context()))
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "entry retrieved", entity)
}

// AdminGet returns one entry by id regardless of status.
func (h *entityHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	entity, err := h.s.service.GetEntity(r.Context(), id)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "entry retrieved", entity)
}

// Stats returns grouped per-status totals for the collection.
func (h *entityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.s.service.KindStatistics(r.Context(), h.kind)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "statistics retrieved", counts)
}

type entityPayload struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	CoverURL string `json:"cover_url"`
	Rating   int    `json:"rating"`
}

// Create adds a new entry. Binary-asset collections accept multipart form
// data with a "file" part; the others take JSON.
func (h *entityHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := simplepublish.CreateEntityRequest{
		Kind: h.kind,
		Role: RoleFromContext(r.Context()),
	}

	if isMultipart(r) {
		file, payload, ok := h.parseMultipart(w, r)
		if !ok {
			return
		}
		if file != nil {
			defer file.Close()
			req.File = file
			req.FileName = fileName(r)
		}
		req.Title = payload.Title
		req.Summary = payload.Summary
		req.Content = payload.Content
		req.CoverURL = payload.CoverURL
		req.Rating = payload.Rating
	} else {
		var payload entityPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			h.badRequest(w, r, "invalid request body")
			return
		}
		req.Title = payload.Title
		req.Summary = payload.Summary
		req.Content = payload.Content
		req.CoverURL = payload.CoverURL
		req.Rating = payload.Rating
	}

	entity, err := h.s.service.CreateEntity(r.Context(), req)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondCreated(w, r, "entry created", entity)
}

type updateEntityPayload struct {
	Title    *string `json:"title"`
	Summary  *string `json:"summary"`
	Content  *string `json:"content"`
	CoverURL *string `json:"cover_url"`
	Rating   *int    `json:"rating"`
	Status   *string `json:"status"`
}

// Update applies a partial update; absent fields stay untouched. A status
// field is routed through the lifecycle state machine.
func (h *entityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	req := simplepublish.UpdateEntityRequest{
		ID:   id,
		Role: RoleFromContext(r.Context()),
	}

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			h.badRequest(w, r, "invalid multipart form")
			return
		}
		if file, _, err := r.FormFile("file"); err == nil {
			defer file.Close()
			req.File = file
			req.FileName = fileName(r)
		} else if err != http.ErrMissingFile {
			h.badRequest(w, r, "invalid file part")
			return
		}
		applyFormUpdates(&req, r)
	} else {
		var payload updateEntityPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			h.badRequest(w, r, "invalid request body")
			return
		}
		req.Title = payload.Title
		req.Summary = payload.Summary
		req.Content = payload.Content
		req.CoverURL = payload.CoverURL
		req.Rating = payload.Rating
		if payload.Status != nil {
			status := simplepublish.Status(*payload.Status)
			req.Status = &status
		}
	}

	entity, err := h.s.service.UpdateEntity(r.Context(), req)
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "entry updated", entity)
}

// ToggleStatus flips the entry between its resting and primary states.
func (h *entityHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	entity, err := h.s.service.ToggleStatus(r.Context(), id, RoleFromContext(r.Context()))
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "status updated", entity)
}

// Archive moves the entry into its terminal state.
func (h *entityHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	entity, err := h.s.service.Archive(r.Context(), id, RoleFromContext(r.Context()))
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "entry archived", entity)
}

// Delete removes the entry and its external blobs.
func (h *entityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.s.service.DeleteEntity(r.Context(), id, RoleFromContext(r.Context())); err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "entry deleted", nil)
}

func (h *entityHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, r, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *entityHandler) badRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Response{Success: false, Message: message})
}

const maxUploadSize = 32 << 20 // 32 MiB

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func (h *entityHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (multipart.File, entityPayload, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.badRequest(w, r, "invalid multipart form")
		return nil, entityPayload{}, false
	}

	payload := entityPayload{
		Title:    r.FormValue("title"),
		Summary:  r.FormValue("summary"),
		Content:  r.FormValue("content"),
		CoverURL: r.FormValue("cover_url"),
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, payload, true
		}
		h.badRequest(w, r, "invalid file part")
		return nil, entityPayload{}, false
	}
	return file, payload, true
}

func fileName(r *http.Request) string {
	if r.MultipartForm == nil {
		return ""
	}
	if headers := r.MultipartForm.File["file"]; len(headers) > 0 {
		return headers[0].Filename
	}
	return ""
}

// applyFormUpdates maps present multipart form fields onto the partial
// update request. Absent fields stay nil.
func applyFormUpdates(req *simplepublish.UpdateEntityRequest, r *http.Request) {
	form := r.MultipartForm
	if form == nil {
		return
	}
	if values, ok := form.Value["title"]; ok && len(values) > 0 {
		req.Title = &values[0]
	}
	if values, ok := form.Value["summary"]; ok && len(values) > 0 {
		req.Summary = &values[0]
	}
	if values, ok := form.Value["content"]; ok && len(values) > 0 {
		req.Content = &values[0]
	}
	if values, ok := form.Value["cover_url"]; ok && len(values) > 0 {
		req.CoverURL = &values[0]
	}
	if values, ok := form.Value["status"]; ok && len(values) > 0 {
		status := simplepublish.Status(values[0])
		req.Status = &status
	}
}
