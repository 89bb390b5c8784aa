package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

// orderHandler serves the public intake form and its admin backlog.
type orderHandler struct {
	s *Server
}

// Routes returns the routes for order intake.
func (h *orderHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Submit)

	r.Group(func(r chi.Router) {
		r.Use(RequireElevated)

		r.Get("/", h.List)
		r.Patch("/{id}/handled", h.MarkHandled)
	})

	return r
}

type submitOrderPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// Submit accepts a public order-intake submission.
func (h *orderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload submitOrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: "invalid request body"})
		return
	}

	order, err := h.s.service.SubmitOrder(r.Context(), simplepublish.SubmitOrderRequest{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Service: payload.Service,
		Message: payload.Message,
	})
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondCreated(w, r, "order received", order)
}

// List returns a page of the order backlog, newest first.
func (h *orderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.s.service.ListOrders(r.Context(), r.URL.Query(), RoleFromContext(r.Context()))
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "orders retrieved", ListData{
		Items:      page.Items,
		Pagination: page.Pagination,
		TotalItems: page.TotalItems,
	})
}

// MarkHandled closes an order. Already-handled orders are returned as-is.
func (h *orderHandler) MarkHandled(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: "invalid id"})
		return
	}

	order, err := h.s.service.MarkOrderHandled(r.Context(), id, RoleFromContext(r.Context()))
	if err != nil {
		h.s.respondError(w, r, err)
		return
	}

	respondOK(w, r, "order updated", order)
}
