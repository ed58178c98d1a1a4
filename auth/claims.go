package auth

import (
	"context"
	"slices"
)

// CustomClaims are the non-registered claims read from Auth0 access tokens.
type CustomClaims struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Roles    []string `json:"https://simpleamericanaccent.com/claims/roles"`
}

func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

func (c *CustomClaims) HasRole(role string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Roles, role)
}
