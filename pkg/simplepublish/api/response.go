package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ListData wraps list payloads together with their pagination block. The
// pagination block is composed into the response here; handlers never mutate
// the item list to carry it.
type ListData struct {
	Items      interface{}               `json:"items"`
	Pagination *simplepublish.Pagination `json:"pagination,omitempty"`
	TotalItems int64                     `json:"total_items"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, Response{
		Success: status < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

func respondCreated(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	respond(w, r, http.StatusCreated, message, data)
}

func respondOK(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	respond(w, r, http.StatusOK, message, data)
}

// respondError maps domain errors onto HTTP statuses and renders the
// envelope. Internal errors expose detail only outside production.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *simplepublish.ValidationError
	if errors.As(err, &validationErr) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{
			Success: false,
			Message: "validation failed",
			Errors:  validationErr.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, simplepublish.ErrNotFound):
		status, message = http.StatusNotFound, "resource not found"
	case errors.Is(err, simplepublish.ErrOrderNotFound):
		status, message = http.StatusNotFound, "order not found"
	case errors.Is(err, simplepublish.ErrSlugConflict):
		status, message = http.StatusConflict, "an entry with this title already exists"
	case errors.Is(err, simplepublish.ErrForbidden):
		status, message = http.StatusForbidden, "insufficient permissions"
	case errors.Is(err, simplepublish.ErrIllegalTransition):
		status, message = http.StatusConflict, "status change not allowed"
	case errors.Is(err, simplepublish.ErrUnknownKind):
		status, message = http.StatusNotFound, "unknown collection"
	case errors.Is(err, simplepublish.ErrUploadFailed):
		status, message = http.StatusBadGateway, "content upload failed"
	}

	resp := Response{Success: false, Message: message}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		if !s.production {
			resp.Errors = map[string]string{"detail": err.Error()}
		}
	} else if status >= http.StatusBadGateway && !s.production {
		resp.Errors = map[string]string{"detail": err.Error()}
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
