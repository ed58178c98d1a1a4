package middleware

import (
	"net/http"
	"time"

	"github.com/andrewpaige1/accent-api/models"
	"github.com/andrewpaige1/accent-api/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SyncUser provisions the Auth0 user in the database on every authenticated request,
// bumps LastSeenAt and attaches the row to the request context.
func SyncUser(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth0ID, ok := utils.GetAuth0ID(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := provisionUser(db.WithContext(r.Context()), auth0ID, r)
			if err != nil {
				logrus.Errorf("SyncUser: failed to provision user %s: %v", auth0ID, err)
				utils.WriteError(w, http.StatusInternalServerError, "Authentication error")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithUser(r.Context(), user)))
		})
	}
}

func provisionUser(db *gorm.DB, auth0ID string, r *http.Request) (*models.User, error) {
	now := time.Now().UTC()
	update := models.User{LastSeenAt: &now}
	if custom := utils.GetCustomClaims(r); custom != nil {
		update.Email = custom.Email
		update.Name = custom.Name
		if update.Name == "" {
			update.Name = custom.Nickname
		}
	}

	var user models.User
	err := db.Where(models.User{Auth0ID: auth0ID}).Assign(update).FirstOrCreate(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RequireUser rejects requests that did not carry a valid token.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUser(r); !ok {
			utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin allows only tokens carrying the admin role.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetAuth0ID(r); !ok {
			utils.WriteError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}
		if !utils.IsAdmin(r) {
			utils.WriteError(w, http.StatusForbidden, "Admins only.")
			return
		}
		next.ServeHTTP(w, r)
	}
}
