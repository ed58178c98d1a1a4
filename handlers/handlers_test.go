package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andrewpaige1/accent-api/auth"
	"github.com/andrewpaige1/accent-api/middleware"
	"github.com/andrewpaige1/accent-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret   = "handlers-test-secret"
	testIssuer   = "accent-api-test"
	testAudience = "https://api.accent.test"
)

type testServer struct {
	db      *gorm.DB
	handler http.Handler
	records *fakeRecords
	audio   *fakeAudio
	dict    *fakeDictionary
	funnel  *fakeFunnel
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// newTestServer wires the real routes behind the same token and user middleware as serve.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := openTestDB(t)

	authMiddleware, err := middleware.EnsureValidToken(middleware.JWTOptions{
		Audience:  testAudience,
		SecretKey: testSecret,
		Issuer:    testIssuer,
	})
	require.NoError(t, err)

	s := &testServer{
		db:      db,
		records: newFakeRecords(),
		audio:   &fakeAudio{},
		dict:    &fakeDictionary{},
		funnel:  &fakeFunnel{},
	}
	mux := Routes(Handlers{
		DB:            &DBHandler{DB: db},
		Audio:         &AudioHandler{Wiktionary: s.audio, Dictionary: s.dict},
		Records:       &RecordsHandler{Records: s.records},
		InternalStats: &InternalStatsHandler{Funnel: s.funnel},
	})
	s.handler = authMiddleware(middleware.SyncUser(db)(mux))
	return s
}

func userToken(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	token, err := auth.CreateToken(testSecret, auth.TokenOptions{
		Subject:  subject,
		Email:    subject + "@example.com",
		Name:     "User " + subject,
		Roles:    roles,
		Issuer:   testIssuer,
		Audience: testAudience,
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	return token
}

func adminToken(t *testing.T) string {
	return userToken(t, "admin-1", auth.RoleAdmin)
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// seedContrast stores a contrast with the given pair ids.
func seedContrast(t *testing.T, db *gorm.DB, key, category string, pairIDs ...string) models.Contrast {
	t.Helper()
	contrast := models.Contrast{Key: key, Name: strings.ToUpper(key), Category: category, Active: true}
	require.NoError(t, db.Create(&contrast).Error)
	for i, id := range pairIDs {
		pair := models.Pair{
			PairID:     id,
			ContrastID: contrast.ID,
			WordA:      id + "-a",
			WordB:      id + "-b",
			Active:     true,
		}
		require.NoError(t, db.Omit("Contrast").Create(&pair).Error, "pair %d", i)
	}
	return contrast
}

func seedTrial(t *testing.T, db *gorm.DB, userID uint, trialID, pairID string, correct bool, at time.Time) {
	t.Helper()
	trial := models.Trial{
		TrialID:       trialID,
		UserID:        userID,
		PairID:        pairID,
		PresentedSide: models.SideA,
		ChoiceSide:    models.SideA,
		IsCorrect:     correct,
		PresentedAt:   at,
		RespondedAt:   at,
	}
	require.NoError(t, db.Omit("User", "Pair").Create(&trial).Error)
}

func seedUser(t *testing.T, db *gorm.DB, auth0ID string) models.User {
	t.Helper()
	user := models.User{Auth0ID: auth0ID, Email: auth0ID + "@example.com", Name: auth0ID}
	require.NoError(t, db.Create(&user).Error)
	return user
}
