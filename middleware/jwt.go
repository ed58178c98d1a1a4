package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/andrewpaige1/accent-api/auth"
	"github.com/andrewpaige1/accent-api/utils"
	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/sirupsen/logrus"
)

type JWTOptions struct {
	// Auth0Domain enables RS256 validation against the tenant's JWKS.
	Auth0Domain string
	Audience    string
	// SecretKey and Issuer are used for HS256 development tokens when Auth0Domain is empty.
	SecretKey string
	Issuer    string
}

// EnsureValidToken validates bearer tokens when present. Requests without a token pass
// through unauthenticated so public endpoints keep working; handlers decide on 401.
func EnsureValidToken(opts JWTOptions) (func(http.Handler) http.Handler, error) {
	jwtValidator, err := newValidator(opts)
	if err != nil {
		return nil, err
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logrus.Warnf("EnsureValidToken: rejected token for %s %s: %v", r.Method, r.URL.Path, err)
		utils.WriteError(w, http.StatusUnauthorized, "Failed to validate JWT")
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithCredentialsOptional(true),
	)

	return func(next http.Handler) http.Handler {
		return mw.CheckJWT(next)
	}, nil
}

func newValidator(opts JWTOptions) (*validator.Validator, error) {
	customClaims := validator.WithCustomClaims(func() validator.CustomClaims {
		return &auth.CustomClaims{}
	})
	clockSkew := validator.WithAllowedClockSkew(time.Minute)

	if opts.Auth0Domain != "" {
		issuerURL, err := url.Parse("https://" + opts.Auth0Domain + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
		}
		provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
		return validator.New(
			provider.KeyFunc,
			validator.RS256,
			issuerURL.String(),
			[]string{opts.Audience},
			customClaims,
			clockSkew,
		)
	}

	if opts.SecretKey == "" {
		return nil, errors.New("middleware: no Auth0 domain or JWT secret configured")
	}
	secret := []byte(opts.SecretKey)
	return validator.New(
		func(ctx context.Context) (interface{}, error) { return secret, nil },
		validator.HS256,
		opts.Issuer,
		[]string{opts.Audience},
		customClaims,
		clockSkew,
	)
}
