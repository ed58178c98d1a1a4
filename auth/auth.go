package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RolesClaim is the namespaced claim Auth0 rules attach roles under.
const RolesClaim = "https://simpleamericanaccent.com/claims/roles"

const RoleAdmin = "admin"

var ErrMissingSecret = errors.New("auth: JWT secret key not set")

// TokenOptions describes a development token. Production tokens are issued by Auth0.
type TokenOptions struct {
	Subject  string
	Email    string
	Name     string
	Nickname string
	Roles    []string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// CreateToken signs an HS256 token carrying the same claims Auth0 would issue.
func CreateToken(secretKey string, opts TokenOptions) (string, error) {
	if secretKey == "" {
		return "", ErrMissingSecret
	}
	if opts.Subject == "" {
		return "", errors.New("auth: subject is required")
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": opts.Subject,
		"iss": opts.Issuer,
		"aud": []string{opts.Audience},
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if opts.Email != "" {
		claims["email"] = opts.Email
	}
	if opts.Name != "" {
		claims["name"] = opts.Name
	}
	if opts.Nickname != "" {
		claims["nickname"] = opts.Nickname
	}
	if len(opts.Roles) > 0 {
		claims[RolesClaim] = opts.Roles
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}
