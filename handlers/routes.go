package handlers

import (
	"net/http"

	"github.com/andrewpaige1/accent-api/middleware"
)

// Handlers bundles every handler group the API serves.
type Handlers struct {
	DB            *DBHandler
	Audio         *AudioHandler
	Records       *RecordsHandler
	InternalStats *InternalStatsHandler
}

// Routes registers every endpoint. Token validation and user sync wrap the returned mux.
func Routes(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	user, admin := middleware.RequireUser, middleware.RequireAdmin

	// Identity
	mux.HandleFunc("GET /api/me", user(h.DB.GetMe))

	// Quiz
	mux.HandleFunc("GET /api/quiz/contrasts", h.DB.GetContrasts)
	mux.HandleFunc("GET /api/quiz/pairs", h.DB.GetPairs)
	mux.HandleFunc("POST /api/quiz/trials", user(h.DB.CreateTrial))
	mux.HandleFunc("GET /api/quiz/trials", user(h.DB.GetTrials))
	mux.HandleFunc("GET /api/quiz/results", user(h.DB.GetResults))
	mux.HandleFunc("GET /api/quiz/stats", user(h.DB.GetQuizStats))
	mux.HandleFunc("GET /api/quiz/settings", user(h.DB.GetSettings))
	mux.HandleFunc("POST /api/quiz/settings", user(h.DB.SaveSettings))

	// Admin
	mux.HandleFunc("GET /api/admin/users/quiz-activity", admin(h.DB.GetUsersQuizActivity))
	mux.HandleFunc("GET /api/admin/users/{userID}/trials", admin(h.DB.GetUserTrials))
	mux.HandleFunc("GET /api/admin/users/{userID}/stats", admin(h.DB.GetUserStats))
	mux.HandleFunc("GET /api/admin/users/{userID}/windows", admin(h.DB.GetUserWindows))
	mux.HandleFunc("GET /api/admin/overview", admin(h.DB.GetAdminOverview))
	mux.HandleFunc("POST /api/admin/contrasts", admin(h.DB.CreateContrast))
	mux.HandleFunc("PATCH /api/admin/contrasts/{key}", admin(h.DB.UpdateContrast))
	mux.HandleFunc("DELETE /api/admin/contrasts/{key}", admin(h.DB.DeleteContrast))
	mux.HandleFunc("POST /api/admin/contrasts/{key}/pairs", admin(h.DB.CreatePair))
	mux.HandleFunc("PATCH /api/admin/pairs/{pairID}", admin(h.DB.UpdatePair))
	mux.HandleFunc("DELETE /api/admin/pairs/{pairID}", admin(h.DB.DeletePair))

	// Dictionary
	mux.HandleFunc("GET /api/dictionary/lexical-sets", h.DB.GetLexicalSets)
	mux.HandleFunc("GET /api/dictionary/lexical-sets/{lexicalSetID}", h.DB.GetLexicalSet)
	mux.HandleFunc("POST /api/dictionary/lexical-sets", admin(h.DB.CreateLexicalSet))
	mux.HandleFunc("PUT /api/dictionary/lexical-sets/{lexicalSetID}", admin(h.DB.UpdateLexicalSet))
	mux.HandleFunc("DELETE /api/dictionary/lexical-sets/{lexicalSetID}", admin(h.DB.DeleteLexicalSet))
	mux.HandleFunc("POST /api/dictionary/lexical-sets/{lexicalSetID}/usages/{usageID}", admin(h.DB.AddUsageToLexicalSet))
	mux.HandleFunc("DELETE /api/dictionary/lexical-sets/{lexicalSetID}/usages/{usageID}", admin(h.DB.RemoveUsageFromLexicalSet))
	mux.HandleFunc("GET /api/dictionary/consonant-phonemes", h.DB.GetConsonantPhonemes)
	mux.HandleFunc("GET /api/dictionary/consonant-phonemes/{phonemeID}", h.DB.GetConsonantPhoneme)
	mux.HandleFunc("POST /api/dictionary/consonant-phonemes", admin(h.DB.CreateConsonantPhoneme))
	mux.HandleFunc("PUT /api/dictionary/consonant-phonemes/{phonemeID}", admin(h.DB.UpdateConsonantPhoneme))
	mux.HandleFunc("DELETE /api/dictionary/consonant-phonemes/{phonemeID}", admin(h.DB.DeleteConsonantPhoneme))
	mux.HandleFunc("POST /api/dictionary/consonant-phonemes/{phonemeID}/usages/{usageID}", admin(h.DB.AddUsageToConsonantPhoneme))

	// Pronunciation audio
	mux.HandleFunc("GET /api/dictionary/wiktionary/audio/{word}", h.Audio.GetWiktionaryAudio)
	mux.HandleFunc("GET /api/dictionary/wiktionary/audio/{word}/us", h.Audio.GetWiktionaryUSAudio)
	mux.HandleFunc("GET /api/dictionary/audio/{word}", h.Audio.GetUSAudio)

	// Records API
	mux.HandleFunc("GET /api/authz", user(h.Records.GetAuthz))
	mux.HandleFunc("GET /api/data/loadIssues", user(h.Records.LoadIssues))
	mux.HandleFunc("GET /api/data/loadAudio/{audioID}", user(h.Records.LoadAudio))
	mux.HandleFunc("POST /api/v1/annotations/update", admin(h.Records.UpdateAnnotations))

	// Internal stats
	mux.HandleFunc("GET /api/internalstats/loadrange", admin(h.InternalStats.LoadRange))
	mux.HandleFunc("GET /api/internalstats/funnel", admin(h.InternalStats.GetFunnel))

	return mux
}
