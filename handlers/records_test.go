package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/andrewpaige1/accent-api/airtable"
	"github.com/andrewpaige1/accent-api/annotations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, fields map[string]any) airtable.Record {
	return airtable.Record{ID: id, Fields: fields}
}

func seedPeopleAndAudio(f *fakeRecords) {
	f.add(peopleTable,
		record("recAlice", map[string]any{
			fieldName: "Alice", fieldAuth0ID: "alice",
			fieldAudioAccess: []any{"recAudio1", "recAudio2", "recAudio1"},
		}),
		record("recBob", map[string]any{
			fieldName: "Bob", fieldAuth0ID: "bob", fieldBlockReplays: "Yes",
		}),
		record("recSpeaker", map[string]any{fieldName: "Speaker One"}),
	)
	f.add(audioSourceTable,
		record("recAudio1", map[string]any{
			fieldName: "Session 1", fieldSpeaker: []any{"recSpeaker"}, fieldDate: "2025-01-02",
			fieldMP3URL: "https://cdn.test/1.mp3", fieldTranscriptURL: "https://cdn.test/1.json",
		}),
		record("recAudio2", map[string]any{fieldName: "Session 2", fieldSpeaker: []any{"recSpeaker"}}),
		record("recAudio3", map[string]any{fieldName: "Session 3"}),
	)
	f.add(annotations.WordInstanceTable,
		record("recW1", map[string]any{annotations.FieldAudioSource: []any{"Session 1"}, annotations.FieldWordIndex: 3.0}),
		record("recW2", map[string]any{annotations.FieldAudioSource: []any{"Session 3"}, annotations.FieldWordIndex: 3.0}),
	)
}

func TestGetAuthz(t *testing.T) {
	s := newTestServer(t)
	seedPeopleAndAudio(s.records)

	t.Run("lists accessible audios and their speakers", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/authz", userToken(t, "alice"), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decode[struct {
			People         []speaker      `json:"people"`
			Audios         []audioSummary `json:"audios"`
			IsAdmin        bool           `json:"isAdmin"`
			CanViewReplays bool           `json:"canViewReplays"`
		}](t, rec)
		assert.Equal(t, []speaker{{ID: "recSpeaker", Name: "Speaker One"}}, body.People)
		require.Len(t, body.Audios, 2)
		assert.Equal(t, audioSummary{ID: "recAudio1", Name: "Session 1", SpeakerName: "recSpeaker", Date: "2025-01-02"}, body.Audios[0])
		assert.Equal(t, "recAudio2", body.Audios[1].ID)
		assert.False(t, body.IsAdmin)
		assert.True(t, body.CanViewReplays)
	})

	t.Run("blocked replays", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/authz", userToken(t, "bob"), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, false, body["canViewReplays"])
		assert.Empty(t, body["audios"])
	})

	t.Run("unknown person", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/authz", userToken(t, "carol"), nil).Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/authz", "", nil).Code)
	})
}

func TestLoadAudio(t *testing.T) {
	s := newTestServer(t)
	seedPeopleAndAudio(s.records)

	t.Run("with access", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/data/loadAudio/recAudio1", userToken(t, "alice"), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decode[struct {
			Audio         map[string]string `json:"audio"`
			AirtableWords struct {
				Records []airtable.Record `json:"records"`
			} `json:"airtableWords"`
		}](t, rec)
		assert.Equal(t, map[string]string{
			"mp3url":  "https://cdn.test/1.mp3",
			"tranurl": "https://cdn.test/1.json",
			"name":    "Session 1",
		}, body.Audio)
		require.Len(t, body.AirtableWords.Records, 1)
		assert.Equal(t, "recW1", body.AirtableWords.Records[0].ID)
	})

	t.Run("without access", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/data/loadAudio/recAudio3", userToken(t, "alice"), nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/data/loadAudio/recAudio1", userToken(t, "bob"), nil).Code)
	})

	t.Run("admins see everything", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/data/loadAudio/recAudio3", adminToken(t), nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/data/loadAudio/recMissing", adminToken(t), nil).Code)
	})
}

func TestLoadIssues(t *testing.T) {
	s := newTestServer(t)
	s.records.add(targetTable,
		record("recT1", map[string]any{fieldName: "Flap T", fieldPresentationOrder: 2.0, fieldType: "consonant"}),
		record("recT2", map[string]any{fieldName: "Unordered"}),
		record("recT3", map[string]any{fieldName: "Schwa", fieldPresentationOrder: 1.0}),
	)
	s.records.add(issuesTable,
		record("recI1", map[string]any{fieldName: "late", fieldPresentationOrder: 5.0, fieldTarget: []any{"recT1"}}),
		record("recI2", map[string]any{
			fieldName: "early", fieldPresentationOrder: 1.0, fieldTarget: []any{"recT1", "recT3"},
			fieldResources: "<https://a.test/1>\r\n\n  https://a.test/2  \n",
		}),
		record("recI3", map[string]any{fieldName: "orphan", fieldTarget: []any{"recGone"}}),
	)

	rec := s.do(t, http.MethodGet, "/api/data/loadIssues", userToken(t, "alice"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	features := decode[[]feature](t, rec)
	require.Len(t, features, 3)
	assert.Equal(t, []string{"recT3", "recT1", "recT2"}, []string{features[0].ID, features[1].ID, features[2].ID})
	assert.Nil(t, features[2].Order)
	assert.Empty(t, features[2].Issues)

	flap := features[1]
	require.Len(t, flap.Issues, 2)
	assert.Equal(t, "early", flap.Issues[0].Name)
	assert.Equal(t, []string{"https://a.test/1", "https://a.test/2"}, flap.Issues[0].Resources)
	assert.Equal(t, "late", flap.Issues[1].Name)
	assert.Empty(t, flap.Issues[1].Resources)
}

func TestLoadIssuesUpstreamFailure(t *testing.T) {
	s := newTestServer(t)

	s.records.err = errors.New("boom")
	assert.Equal(t, http.StatusBadGateway, s.do(t, http.MethodGet, "/api/data/loadIssues", userToken(t, "alice"), nil).Code)

	s.records.err = airtable.ErrNotConfigured
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/api/data/loadIssues", userToken(t, "alice"), nil).Code)
}

func TestFirstOrEmpty(t *testing.T) {
	assert.Equal(t, "", firstOrEmpty(nil))
	assert.Equal(t, "recSpeaker", firstOrEmpty([]string{"recSpeaker", "recOther"}))
}

func TestParseResources(t *testing.T) {
	assert.Empty(t, parseResources(""))
	assert.Equal(t, []string{"a", "b"}, parseResources("<a>\n\n<b>"))
}

func TestUpdateAnnotations(t *testing.T) {
	s := newTestServer(t)
	seedPeopleAndAudio(s.records)
	s.records.tables[annotations.WordInstanceTable][0].Fields[annotations.FieldIssues] = []any{"flap"}
	s.records.tables[annotations.WordInstanceTable][0].Fields[annotations.FieldAudioSource] = []any{"recAudio1"}
	token := adminToken(t)

	type response struct {
		Operations []annotations.Operation `json:"operations"`
		Results    []annotations.Result    `json:"results"`
		Success    bool                    `json:"success"`
	}

	t.Run("admin only", func(t *testing.T) {
		body := map[string]any{"wordIndex": 3, "annotations": []string{}, "audioId": "recAudio1"}
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/v1/annotations/update", userToken(t, "alice"), body).Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/annotations/update", token, map[string]any{"audioId": "recAudio1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "wordIndex")
	})

	t.Run("no change", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/annotations/update", token, map[string]any{
			"wordIndex": 3, "annotations": []string{"flap"}, "audioId": "recAudio1",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode[response](t, rec)
		assert.Empty(t, body.Operations)
		assert.True(t, body.Success)
	})

	t.Run("update", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/annotations/update", token, map[string]any{
			"wordIndex": 3, "annotations": []string{"flap", "schwa"}, "audioId": "recAudio1",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[response](t, rec)
		require.Len(t, body.Operations, 1)
		assert.Equal(t, annotations.OpUpdate, body.Operations[0].Type)
		assert.True(t, body.Success)
		assert.Contains(t, s.records.updated, "recW1")
	})

	t.Run("create for a new word index", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/annotations/update", token, map[string]any{
			"wordIndex": 0, "annotations": []string{"schwa"}, "audioId": "recAudio1", "word": "the", "timestamp": 1.5,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[response](t, rec)
		require.Len(t, body.Results, 1)
		assert.Equal(t, annotations.OpCreate, body.Results[0].Type)
		assert.Equal(t, "recNew1", body.Results[0].RecordID)
		require.Len(t, s.records.created, 1)
		assert.Equal(t, 1.5, s.records.created[0][annotations.FieldTimestamp])
	})

	t.Run("records API without a write key", func(t *testing.T) {
		s.records.readOnly = true
		s.records.updated = map[string]map[string]any{}
		defer func() { s.records.readOnly = false }()

		rec := s.do(t, http.MethodPost, "/api/v1/annotations/update", token, map[string]any{
			"wordIndex": 3, "annotations": []string{"schwa"}, "audioId": "recAudio1",
		})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Empty(t, s.records.updated)
	})

	t.Run("delete when cleared", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/v1/annotations/update", token, map[string]any{
			"wordIndex": 3, "annotations": []string{}, "audioId": "recAudio1",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"recW1"}, s.records.deleted)
	})
}
