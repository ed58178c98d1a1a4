package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Environment struct {
	IsDevelopment bool
	Port          string
	DBURL         string
	LogLevel      string
	LogFormat     string
	GormLogLevel  string

	AllowedOrigins []string

	Auth0Domain   string
	Auth0Audience string
	// JWTSecretKey signs and verifies HS256 tokens when no Auth0 domain is configured.
	JWTSecretKey string
	JWTIssuer    string

	AirtableBaseID   string
	AirtableReadKey  string
	AirtableWriteKey string
	AirtableURL      string

	PlausibleAPIKey string
	PlausibleSiteID string
	PlausibleURL    string

	WiktionaryURL    string
	DictionaryAPIURL string
}

var Env Environment

// LoadEnvironment reads .env outside production, then binds environment variables with defaults.
func LoadEnvironment() (*Environment, error) {
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		if err := godotenv.Load(); err != nil {
			logrus.Debugf("config: .env file not loaded: %v", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	env := Environment{
		IsDevelopment:    v.GetString("RAILWAY_ENVIRONMENT_NAME") == "",
		Port:             v.GetString("PORT"),
		DBURL:            v.GetString("DB_URL"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		GormLogLevel:     v.GetString("GORM_LOG_LEVEL"),
		AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Auth0Domain:      v.GetString("AUTH0_DOMAIN"),
		Auth0Audience:    v.GetString("AUTH0_AUDIENCE"),
		JWTSecretKey:     v.GetString("JWT_SECRET_KEY"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		AirtableBaseID:   v.GetString("AIRTABLE_BASE_ID"),
		AirtableReadKey:  v.GetString("AIRTABLE_READ_KEY"),
		AirtableWriteKey: v.GetString("AIRTABLE_WRITE_KEY"),
		AirtableURL:      v.GetString("AIRTABLE_URL"),
		PlausibleAPIKey:  v.GetString("PLAUSIBLE_API_KEY"),
		PlausibleSiteID:  v.GetString("PLAUSIBLE_SITE_ID"),
		PlausibleURL:     v.GetString("PLAUSIBLE_URL"),
		WiktionaryURL:    v.GetString("WIKTIONARY_URL"),
		DictionaryAPIURL: v.GetString("DICTIONARY_API_URL"),
	}

	if err := env.validate(); err != nil {
		return nil, err
	}

	Env = env
	return &env, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_URL", "sqlite:accent.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("GORM_LOG_LEVEL", "warn")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("AUTH0_AUDIENCE", "https://api.simpleamericanaccent.com")
	v.SetDefault("JWT_ISSUER", "accent-api-dev")
	v.SetDefault("AIRTABLE_URL", "https://api.airtable.com")
	v.SetDefault("PLAUSIBLE_SITE_ID", "simpleamericanaccent.com")
	v.SetDefault("PLAUSIBLE_URL", "https://plausible.io")
	v.SetDefault("WIKTIONARY_URL", "https://en.wiktionary.org")
	v.SetDefault("DICTIONARY_API_URL", "https://api.dictionaryapi.dev")
}

func (e Environment) validate() error {
	if e.Auth0Domain == "" && e.JWTSecretKey == "" {
		return fmt.Errorf("config: either AUTH0_DOMAIN or JWT_SECRET_KEY must be set")
	}
	return nil
}

// AirtableEnabled reports whether the records API is configured.
func (e Environment) AirtableEnabled() bool {
	return e.AirtableBaseID != "" && e.AirtableReadKey != ""
}

func (e Environment) Addr() string {
	return "0.0.0.0:" + e.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
