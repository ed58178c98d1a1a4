package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, secret, token string) (jwt.MapClaims, error) {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return claims, err
}

func TestCreateToken(t *testing.T) {
	token, err := CreateToken("secret", TokenOptions{
		Subject:  "auth0|abc",
		Email:    "abc@example.com",
		Issuer:   "accent-api-dev",
		Audience: "https://api.example.com",
		Roles:    []string{RoleAdmin},
	})
	require.NoError(t, err)

	claims, err := parse(t, "secret", token)
	require.NoError(t, err)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", sub)
	assert.Equal(t, "abc@example.com", claims["email"])
	assert.Equal(t, []interface{}{RoleAdmin}, claims[RolesClaim])

	_, err = parse(t, "other", token)
	assert.Error(t, err)
}

func TestCreateTokenErrors(t *testing.T) {
	_, err := CreateToken("", TokenOptions{Subject: "x"})
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = CreateToken("secret", TokenOptions{})
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := CreateToken("secret", TokenOptions{Subject: "auth0|abc", TTL: -time.Minute})
	require.NoError(t, err)

	_, err = parse(t, "secret", token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestHasRole(t *testing.T) {
	var none *CustomClaims
	assert.False(t, none.HasRole(RoleAdmin))
	assert.True(t, (&CustomClaims{Roles: []string{"editor", RoleAdmin}}).HasRole(RoleAdmin))
	assert.False(t, (&CustomClaims{Roles: []string{"editor"}}).HasRole(RoleAdmin))
}
