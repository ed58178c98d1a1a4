package utils

import (
	"context"
	"net/http"

	"github.com/andrewpaige1/accent-api/auth"
	"github.com/andrewpaige1/accent-api/models"
	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
)

type contextKey string

const userContextKey contextKey = "user"

func GetClaims(r *http.Request) (*validator.ValidatedClaims, bool) {
	claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

func GetAuth0ID(r *http.Request) (string, bool) {
	claims, ok := GetClaims(r)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return "", false
	}
	return claims.RegisteredClaims.Subject, true
}

func GetCustomClaims(r *http.Request) *auth.CustomClaims {
	claims, ok := GetClaims(r)
	if !ok {
		return nil
	}
	custom, _ := claims.CustomClaims.(*auth.CustomClaims)
	return custom
}

func IsAdmin(r *http.Request) bool {
	return GetCustomClaims(r).HasRole(auth.RoleAdmin)
}

// WithUser attaches the provisioned database user to ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	return user, ok && user != nil
}
