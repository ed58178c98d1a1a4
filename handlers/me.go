package handlers

import (
	"net/http"

	"github.com/andrewpaige1/accent-api/auth"
	"github.com/andrewpaige1/accent-api/utils"
)

type profile struct {
	ID      uint     `json:"id"`
	Auth0ID string   `json:"sub"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"isAdmin"`
}

// GET /api/me
func (db *DBHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetUser(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	p := profile{
		ID:      user.ID,
		Auth0ID: user.Auth0ID,
		Email:   user.Email,
		Name:    user.Name,
		Roles:   []string{},
	}
	if claims := utils.GetCustomClaims(r); claims != nil {
		if claims.Roles != nil {
			p.Roles = claims.Roles
		}
		p.IsAdmin = claims.HasRole(auth.RoleAdmin)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": p})
}
