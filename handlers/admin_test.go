package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/andrewpaige1/accent-api/models"
	"github.com/andrewpaige1/accent-api/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)

	paths := []string{
		"/api/admin/users/quiz-activity",
		"/api/admin/users/1/trials",
		"/api/admin/users/1/stats",
		"/api/admin/users/1/windows",
		"/api/admin/overview",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, "", nil).Code)
			assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, userToken(t, "learner"), nil).Code)
		})
	}
}

// seedActivity creates two learners: one with five trials, one with two.
func seedActivity(t *testing.T, s *testServer) (models.User, models.User) {
	t.Helper()
	seedContrast(t, s.db, "kit_fleece", models.CategoryVowels, "p1")
	seedContrast(t, s.db, "th_t", models.CategoryConsonants, "p2")
	seedContrast(t, s.db, "trap_dress", models.CategoryVowels)

	busy := seedUser(t, s.db, "busy")
	quiet := seedUser(t, s.db, "quiet")
	seedUser(t, s.db, "idle")

	now := time.Now().UTC()
	old := now.AddDate(0, 0, -30)
	for i := 0; i < 4; i++ {
		seedTrial(t, s.db, busy.ID, fmt.Sprintf("busy-%d", i), "p1", i%2 == 0, old.Add(time.Duration(i)*time.Minute))
	}
	seedTrial(t, s.db, busy.ID, "busy-4", "p2", true, now.Add(-time.Hour))
	seedTrial(t, s.db, quiet.ID, "quiet-0", "p1", true, old)
	seedTrial(t, s.db, quiet.ID, "quiet-1", "p1", false, old.Add(time.Minute))
	return busy, quiet
}

func TestGetUsersQuizActivity(t *testing.T) {
	s := newTestServer(t)
	busy, quiet := seedActivity(t, s)

	rec := s.do(t, http.MethodGet, "/api/admin/users/quiz-activity", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Users []userActivity `json:"users"`
	}](t, rec)
	require.Len(t, body.Users, 2)
	assert.Equal(t, busy.ID, body.Users[0].ID)
	assert.Equal(t, int64(5), body.Users[0].TrialCount)
	require.NotNil(t, body.Users[0].LastActive)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), *body.Users[0].LastActive, time.Minute)
	assert.Equal(t, quiet.ID, body.Users[1].ID)
	assert.Equal(t, int64(2), body.Users[1].TrialCount)
}

func TestGetUserTrials(t *testing.T) {
	s := newTestServer(t)
	busy, _ := seedActivity(t, s)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d/trials?limit=2&offset=1", busy.ID), adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Trials []adminTrial `json:"trials"`
	}](t, rec)
	require.Len(t, body.Trials, 2)
	assert.Equal(t, "busy-3", body.Trials[0].TrialID)
	assert.Equal(t, body.Trials[0].TrialID, body.Trials[0].ID)
	assert.Equal(t, "p1-a", body.Trials[0].WordA)
	assert.Equal(t, "KIT_FLEECE", body.Trials[0].ContrastName)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/admin/users/abc/trials", adminToken(t), nil).Code)
}

func TestGetUserStats(t *testing.T) {
	s := newTestServer(t)
	busy, _ := seedActivity(t, s)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d/stats", busy.ID), adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Stats map[string]categoryTotals `json:"stats"`
	}](t, rec)
	assert.Equal(t, categoryTotals{Total: 5, Correct: 3, Average: 60, Completed: 2, Available: 3}, body.Stats["overall"])
	assert.Equal(t, categoryTotals{Total: 4, Correct: 2, Average: 50, Completed: 1, Available: 2}, body.Stats["vowels"])
	assert.Equal(t, categoryTotals{Total: 1, Correct: 1, Average: 100, Completed: 1, Available: 1}, body.Stats["consonants"])
}

func TestGetUserWindows(t *testing.T) {
	s := newTestServer(t)
	busy, _ := seedActivity(t, s)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d/windows", busy.ID), adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Windows []stats.ContrastWindows `json:"windows"`
	}](t, rec)
	require.Len(t, body.Windows, 2)
	byKey := map[string]stats.ContrastWindows{}
	for _, w := range body.Windows {
		byKey[w.ContrastKey] = w
	}
	assert.Equal(t, 4, byKey["kit_fleece"].TotalTrials)
	assert.Equal(t, 50, byKey["kit_fleece"].Percentage)
	assert.False(t, byKey["kit_fleece"].Sufficient)
	assert.Nil(t, byKey["kit_fleece"].Delta)
}

func TestGetAdminOverview(t *testing.T) {
	s := newTestServer(t)
	seedActivity(t, s)

	rec := s.do(t, http.MethodGet, "/api/admin/overview", adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Overview struct {
			TotalUsers      int64 `json:"totalUsers"`
			TotalTrials     int64 `json:"totalTrials"`
			OverallAccuracy int   `json:"overallAccuracy"`
			RecentActivity  struct {
				Trials   int64 `json:"trials"`
				NewUsers int64 `json:"newUsers"`
			} `json:"recentActivity"`
			TopContrasts []contrastActivity `json:"topContrasts"`
		} `json:"overview"`
	}](t, rec)

	o := body.Overview
	assert.Equal(t, int64(2), o.TotalUsers)
	assert.Equal(t, int64(7), o.TotalTrials)
	assert.Equal(t, 57, o.OverallAccuracy)
	assert.Equal(t, int64(1), o.RecentActivity.Trials)
	assert.Equal(t, int64(1), o.RecentActivity.NewUsers)
	require.Len(t, o.TopContrasts, 2)
	assert.Equal(t, contrastActivity{ContrastName: "KIT_FLEECE", TrialCount: 6}, o.TopContrasts[0])
}

func TestContrastAndPairCRUD(t *testing.T) {
	s := newTestServer(t)
	token := adminToken(t)

	rec := s.do(t, http.MethodPost, "/api/admin/contrasts", token, map[string]interface{}{
		"key": "s_z", "name": "S vs Z", "category": "consonants", "soundASymbol": "s", "soundBSymbol": "z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/admin/contrasts", token, map[string]interface{}{
		"key": "s_z", "name": "again", "category": "consonants",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/contrasts", token, map[string]interface{}{
		"key": "bad", "name": "Bad", "category": "diphthongs",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	t.Run("patch can deactivate", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/admin/contrasts/s_z", token, map[string]interface{}{
			"title": "Hiss vs buzz", "active": false,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode[struct {
			Contrast models.Contrast `json:"contrast"`
		}](t, rec)
		assert.Equal(t, "Hiss vs buzz", body.Contrast.Title)
		assert.Equal(t, "S vs Z", body.Contrast.Name)
		assert.False(t, body.Contrast.Active)

		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/api/admin/contrasts/nope", token, map[string]interface{}{}).Code)
	})

	var pairID string
	t.Run("pair gets a generated id", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/admin/contrasts/s_z/pairs", token, map[string]interface{}{
			"wordA": "sip", "wordB": "zip",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decode[struct {
			Pair models.Pair `json:"pair"`
		}](t, rec)
		assert.NotEmpty(t, body.Pair.PairID)
		assert.True(t, body.Pair.Active)
		pairID = body.Pair.PairID

		rec = s.do(t, http.MethodPost, "/api/admin/contrasts/s_z/pairs", token, map[string]interface{}{
			"pairId": pairID, "wordA": "sue", "wordB": "zoo",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("patch pair", func(t *testing.T) {
		rec := s.do(t, http.MethodPatch, "/api/admin/pairs/"+pairID, token, map[string]interface{}{"wordB": "zips"})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[struct {
			Pair models.Pair `json:"pair"`
		}](t, rec)
		assert.Equal(t, "sip", body.Pair.WordA)
		assert.Equal(t, "zips", body.Pair.WordB)
	})

	t.Run("delete pair then contrast", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/admin/pairs/"+pairID, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/admin/pairs/"+pairID, token, nil).Code)
		assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/admin/contrasts/s_z", token, nil).Code)

		var count int64
		require.NoError(t, s.db.Model(&models.Contrast{}).Where("key = ?", "s_z").Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestDeletedContrastAndPairCanBeRecreated(t *testing.T) {
	s := newTestServer(t)
	token := adminToken(t)
	original := seedContrast(t, s.db, "kit_fleece", models.CategoryVowels, "p-1")

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/admin/contrasts/kit_fleece", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/quiz/pairs?contrastKey=kit_fleece", "", nil).Code)

	rec := s.do(t, http.MethodPost, "/api/admin/contrasts", token, map[string]interface{}{
		"key": "kit_fleece", "name": "Kit vs Fleece", "category": "vowels",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	contrast := decode[struct {
		Contrast models.Contrast `json:"contrast"`
	}](t, rec).Contrast
	assert.Equal(t, original.ID, contrast.ID)
	assert.Equal(t, "Kit vs Fleece", contrast.Name)
	assert.True(t, contrast.Active)

	rec = s.do(t, http.MethodGet, "/api/quiz/pairs?contrastKey=kit_fleece", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "p-1")

	rec = s.do(t, http.MethodPost, "/api/admin/contrasts/kit_fleece/pairs", token, map[string]interface{}{
		"pairId": "p-1", "wordA": "ship", "wordB": "sheep",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pair := decode[struct {
		Pair models.Pair `json:"pair"`
	}](t, rec).Pair
	assert.Equal(t, "ship", pair.WordA)

	var count int64
	require.NoError(t, s.db.Unscoped().Model(&models.Pair{}).Where("pair_id = ?", "p-1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	rec = s.do(t, http.MethodPost, "/api/admin/contrasts", token, map[string]interface{}{
		"key": "kit_fleece", "name": "Again", "category": "vowels",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
