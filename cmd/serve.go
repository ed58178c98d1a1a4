package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrewpaige1/accent-api/airtable"
	"github.com/andrewpaige1/accent-api/config"
	"github.com/andrewpaige1/accent-api/funnel"
	"github.com/andrewpaige1/accent-api/handlers"
	"github.com/andrewpaige1/accent-api/middleware"
	"github.com/andrewpaige1/accent-api/plausible"
	"github.com/andrewpaige1/accent-api/wiktionary"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		autoMigrate, _ := cmd.Flags().GetBool("migrate")

		db, err := openDatabase(autoMigrate)
		if err != nil {
			return err
		}

		handler, err := newServer(db, config.Env)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              config.Env.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logrus.Infof("listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logrus.Infof("received signal: %s, shutting down", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", true, "run database migrations before serving")
}

// newServer wires the handlers behind CORS, request logging, token validation and user sync.
func newServer(db *gorm.DB, env config.Environment) (http.Handler, error) {
	authMiddleware, err := middleware.EnsureValidToken(middleware.JWTOptions{
		Auth0Domain: env.Auth0Domain,
		Audience:    env.Auth0Audience,
		SecretKey:   env.JWTSecretKey,
		Issuer:      env.JWTIssuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt middleware: %w", err)
	}

	records := airtable.NewClient(airtable.Options{
		BaseURL:  env.AirtableURL,
		BaseID:   env.AirtableBaseID,
		ReadKey:  env.AirtableReadKey,
		WriteKey: env.AirtableWriteKey,
	})
	if !env.AirtableEnabled() {
		logrus.Warn("AIRTABLE_BASE_ID or AIRTABLE_READ_KEY not set; records endpoints will return 503")
	} else if !records.CanWrite() {
		logrus.Warn("AIRTABLE_WRITE_KEY not set; annotation updates will return 503")
	}
	analytics := plausible.NewClient(env.PlausibleURL, env.PlausibleAPIKey, env.PlausibleSiteID)

	mux := handlers.Routes(handlers.Handlers{
		DB: &handlers.DBHandler{DB: db},
		Audio: &handlers.AudioHandler{
			Wiktionary: wiktionary.NewClient(env.WiktionaryURL),
			Dictionary: wiktionary.NewDictionaryClient(env.DictionaryAPIURL),
		},
		Records:       &handlers.RecordsHandler{Records: records},
		InternalStats: &handlers.InternalStatsHandler{Funnel: funnel.NewService(records, analytics, funnel.DefaultCacheTTL)},
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	return corsHandler.Handler(middleware.RequestLogger(authMiddleware(middleware.SyncUser(db)(mux)))), nil
}
