package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

type contextKey string

const roleKey contextKey = "role"

// NewTokenAuth builds the JWT verifier used by the admin surface.
func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// RoleExtractor resolves the caller's role from the verified token, if any.
// Anonymous callers and callers with unverifiable or malformed tokens proceed
// as public; role checks happen downstream.
func RoleExtractor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := simplepublish.RolePublic

		token, claims, err := jwtauth.FromContext(r.Context())
		if err == nil && token != nil {
			if raw, ok := claims["role"].(string); ok {
				switch simplepublish.Role(raw) {
				case simplepublish.RoleAdmin:
					role = simplepublish.RoleAdmin
				case simplepublish.RoleSuperAdmin:
					role = simplepublish.RoleSuperAdmin
				}
			}
		}

		ctx := context.WithValue(r.Context(), roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleFromContext returns the caller role resolved by RoleExtractor.
func RoleFromContext(ctx context.Context) simplepublish.Role {
	if role, ok := ctx.Value(roleKey).(simplepublish.Role); ok {
		return role
	}
	return simplepublish.RolePublic
}

// RequireElevated rejects callers without an administrative role.
func RequireElevated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !RoleFromContext(r.Context()).Elevated() {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, Response{Success: false, Message: "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
