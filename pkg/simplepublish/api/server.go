package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

// Server wires the publication service into an HTTP surface.
type Server struct {
	service    simplepublish.Service
	tokenAuth  *jwtauth.JWTAuth
	logger     *slog.Logger
	production bool

	// eventSink backs the development-only notification test endpoint.
	eventSink simplepublish.EventSink
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithProduction switches production mode on: no CORS wildcard, no error
// detail in responses, no development endpoints.
func WithProduction(production bool) ServerOption {
	return func(s *Server) { s.production = production }
}

// WithEventSink exposes sink through the development notification test
// endpoint.
func WithEventSink(sink simplepublish.EventSink) ServerOption {
	return func(s *Server) { s.eventSink = sink }
}

// NewServer creates the HTTP server wrapper.
func NewServer(service simplepublish.Service, tokenAuth *jwtauth.JWTAuth, opts ...ServerOption) *Server {
	s := &Server{
		service:   service,
		tokenAuth: tokenAuth,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// collections maps URL path segments to entity kinds.
var collections = map[string]simplepublish.EntityKind{
	"articles":     simplepublish.KindArticle,
	"services":     simplepublish.KindService,
	"samples":      simplepublish.KindSample,
	"testimonials": simplepublish.KindTestimonial,
	"images":       simplepublish.KindImage,
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if !s.production {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.tokenAuth))
		r.Use(RoleExtractor)

		for segment, kind := range collections {
			r.Mount("/"+segment, s.newEntityHandler(kind).Routes())
		}

		r.Mount("/orders", (&orderHandler{s: s}).Routes())

		if !s.production {
			r.With(RequireElevated).Post("/dev/notifications/test", s.handleNotificationTest)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, "ok", map[string]string{"status": "healthy"})
}

// handleNotificationTest fires a synthetic publish event through the
// configured sink so notification delivery can be checked end to end.
func (s *Server) handleNotificationTest(w http.ResponseWriter, r *http.Request) {
	if s.eventSink == nil {
		respondOK(w, r, "no event sink configured", nil)
		return
	}

	now := time.Now().UTC()
	err := s.eventSink.EntityPublished(r.Context(), &simplepublish.Entity{
		ID:          uuid.New(),
		Kind:        simplepublish.KindArticle,
		Title:       "Notification test",
		Slug:        "notification-test",
		Status:      simplepublish.StatusPublished,
		PublishedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, Response{Success: false, Message: "notification delivery failed",
			Errors: map[string]string{"detail": err.Error()}})
		return
	}

	respondOK(w, r, "notification sent", nil)
}
