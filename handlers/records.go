package handlers

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/andrewpaige1/accent-api/airtable"
	"github.com/andrewpaige1/accent-api/annotations"
	"github.com/andrewpaige1/accent-api/utils"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	peopleTable      = "People"
	audioSourceTable = "Audio Source"
	targetTable      = "Target"
	issuesTable      = "BR issues"

	fieldName              = "Name"
	fieldAuth0ID           = "auth0 user_id"
	fieldAudioAccess       = "Access to audios"
	fieldBlockReplays      = "blockReplays"
	fieldSpeaker           = "Speaker"
	fieldDate              = "Date"
	fieldPresentationOrder = "Presentation order"
	fieldType              = "type"
	fieldTarget            = "target"
	fieldResources         = "resources"
	fieldMP3URL            = "mp3 url"
	fieldTranscriptURL     = "tran/alignment JSON url"
)

var resourceSeparator = regexp.MustCompile(`[\r\n]+`)

// RecordsAPI is what the handlers need from the records API client.
type RecordsAPI interface {
	annotations.RecordStore
	FetchRecord(ctx context.Context, table, recordID string) (*airtable.Record, error)
	CanWrite() bool
}

// RecordsHandler serves the annotation workspace backed by the records API.
type RecordsHandler struct {
	Records RecordsAPI
}

type audioSummary struct {
	ID          string `json:"id"`
	Name        string `json:"Name"`
	SpeakerName string `json:"SpeakerName"`
	Date        string `json:"date,omitempty"`
}

type speaker struct {
	ID   string `json:"id"`
	Name string `json:"Name"`
}

// GET /api/authz
func (h *RecordsHandler) GetAuthz(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	people, err := h.Records.FetchRecords(r.Context(), peopleTable, "")
	if err != nil {
		writeUpstreamError(w, "GetAuthz", err)
		return
	}
	person, found := lo.Find(people, func(p airtable.Record) bool { return p.String(fieldAuth0ID) == auth0ID })
	if !found {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	access := person.Strings(fieldAudioAccess)
	audios := []audioSummary{}
	if len(access) > 0 {
		records, err := h.Records.FetchRecords(r.Context(), audioSourceTable, airtable.RecordIDIn(access))
		if err != nil {
			writeUpstreamError(w, "GetAuthz", err)
			return
		}
		byID := lo.KeyBy(records, func(rec airtable.Record) string { return rec.ID })
		audios = lo.FilterMap(access, func(id string, _ int) (audioSummary, bool) {
			rec, ok := byID[id]
			if !ok {
				return audioSummary{}, false
			}
			return audioSummary{
				ID:          rec.ID,
				Name:        rec.String(fieldName),
				SpeakerName: firstOrEmpty(rec.Strings(fieldSpeaker)),
				Date:        rec.String(fieldDate),
			}, true
		})
		audios = lo.UniqBy(audios, func(a audioSummary) string { return a.ID })
	}

	peopleByID := lo.KeyBy(people, func(p airtable.Record) string { return p.ID })
	speakers := lo.FilterMap(audios, func(a audioSummary, _ int) (speaker, bool) {
		p, ok := peopleByID[a.SpeakerName]
		return speaker{ID: p.ID, Name: p.String(fieldName)}, ok
	})
	speakers = lo.UniqBy(speakers, func(s speaker) string { return s.ID })

	isAdmin := utils.IsAdmin(r)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"people":         speakers,
		"audios":         audios,
		"isAdmin":        isAdmin,
		"canViewReplays": isAdmin || !strings.EqualFold(strings.TrimSpace(person.String(fieldBlockReplays)), "yes"),
	})
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

type issue struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Order     *float64 `json:"po"`
	Resources []string `json:"resources"`
}

type feature struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Order  *float64 `json:"po"`
	Type   string   `json:"type"`
	Issues []issue  `json:"issues"`
}

// GET /api/data/loadIssues
func (h *RecordsHandler) LoadIssues(w http.ResponseWriter, r *http.Request) {
	var targets, issues []airtable.Record
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		targets, err = h.Records.FetchRecords(ctx, targetTable, "")
		return err
	})
	g.Go(func() (err error) {
		issues, err = h.Records.FetchRecords(ctx, issuesTable, "")
		return err
	})
	if err := g.Wait(); err != nil {
		writeUpstreamError(w, "LoadIssues", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, groupIssues(targets, issues))
}

// groupIssues attaches each issue to the features it targets, both sorted by presentation order.
func groupIssues(targets, issues []airtable.Record) []*feature {
	features := lo.Map(targets, func(rec airtable.Record, _ int) *feature {
		return &feature{
			ID:     rec.ID,
			Name:   rec.String(fieldName),
			Order:  presentationOrder(rec),
			Type:   rec.String(fieldType),
			Issues: []issue{},
		}
	})
	byID := lo.KeyBy(features, func(f *feature) string { return f.ID })

	for _, rec := range issues {
		item := issue{
			ID:        rec.ID,
			Name:      rec.String(fieldName),
			Order:     presentationOrder(rec),
			Resources: parseResources(rec.String(fieldResources)),
		}
		for _, featureID := range rec.Strings(fieldTarget) {
			if f, ok := byID[featureID]; ok {
				f.Issues = append(f.Issues, item)
			}
		}
	}

	for _, f := range features {
		slices.SortStableFunc(f.Issues, func(a, b issue) int { return compareOrder(a.Order, b.Order) })
	}
	slices.SortStableFunc(features, func(a, b *feature) int { return compareOrder(a.Order, b.Order) })
	return features
}

func presentationOrder(rec airtable.Record) *float64 {
	if po, ok := rec.Number(fieldPresentationOrder); ok {
		return &po
	}
	return nil
}

// compareOrder sorts missing orders last.
func compareOrder(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

// parseResources splits a newline separated list of links, dropping blanks and <> wrappers.
func parseResources(text string) []string {
	return lo.FilterMap(resourceSeparator.Split(text, -1), func(line string, _ int) (string, bool) {
		line = strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(line))
		return line, line != ""
	})
}

// GET /api/data/loadAudio/{audioID}
func (h *RecordsHandler) LoadAudio(w http.ResponseWriter, r *http.Request) {
	audioID := r.PathValue("audioID")
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !utils.IsAdmin(r) {
		allowed, err := h.hasAudioAccess(r.Context(), auth0ID, audioID)
		if err != nil {
			writeUpstreamError(w, "LoadAudio", err)
			return
		}
		if !allowed {
			utils.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
	}

	audio, err := h.Records.FetchRecord(r.Context(), audioSourceTable, audioID)
	if err != nil {
		if errors.Is(err, airtable.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Audio not found")
			return
		}
		writeUpstreamError(w, "LoadAudio", err)
		return
	}

	name := audio.String(fieldName)
	words, err := h.Records.FetchRecords(r.Context(), annotations.WordInstanceTable,
		airtable.FieldEquals(annotations.FieldAudioSource, name))
	if err != nil {
		writeUpstreamError(w, "LoadAudio", err)
		return
	}
	if words == nil {
		words = []airtable.Record{}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"audio": map[string]string{
			"mp3url":  audio.String(fieldMP3URL),
			"tranurl": audio.String(fieldTranscriptURL),
			"name":    name,
		},
		"airtableWords": map[string]interface{}{"records": words},
	})
}

// hasAudioAccess looks the caller up in People on every request rather than trusting earlier calls.
func (h *RecordsHandler) hasAudioAccess(ctx context.Context, auth0ID, audioID string) (bool, error) {
	people, err := h.Records.FetchRecords(ctx, peopleTable, airtable.FieldEquals(fieldAuth0ID, auth0ID))
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(people, func(p airtable.Record) bool {
		return lo.Contains(p.Strings(fieldAudioAccess), audioID)
	}), nil
}

type annotationRequest struct {
	WordIndex   *int     `json:"wordIndex" validate:"required,min=0"`
	Annotations []string `json:"annotations" validate:"required"`
	AudioID     string   `json:"audioId" validate:"required"`
	Word        string   `json:"word"`
	Timestamp   *float64 `json:"timestamp"`
}

// POST /api/v1/annotations/update
func (h *RecordsHandler) UpdateAnnotations(w http.ResponseWriter, r *http.Request) {
	var req annotationRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.Records.CanWrite() {
		writeUpstreamError(w, "UpdateAnnotations", airtable.ErrNotConfigured)
		return
	}

	target := annotations.Target{
		AudioID:   req.AudioID,
		WordIndex: *req.WordIndex,
		Word:      req.Word,
		Timestamp: req.Timestamp,
	}
	existing, err := annotations.LoadExisting(r.Context(), h.Records, target)
	if err != nil {
		writeUpstreamError(w, "UpdateAnnotations", err)
		return
	}

	current := []string{}
	if existing != nil && existing.Annotations != nil {
		current = existing.Annotations
	}
	ops := annotations.Reconcile(existing, req.Annotations)
	if ops == nil {
		ops = []annotations.Operation{}
	}
	results := annotations.Apply(r.Context(), h.Records, target, ops)

	logrus.Infof("UpdateAnnotations: word %d of %s: %d operation(s)", target.WordIndex, target.AudioID, len(ops))
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"input": map[string]interface{}{
			"wordIndex":          target.WordIndex,
			"annotationsCurrent": current,
			"annotationsDesired": req.Annotations,
		},
		"operations": ops,
		"results":    results,
		"success":    lo.EveryBy(results, func(res annotations.Result) bool { return res.Success }),
	})
}

func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, airtable.ErrNotConfigured) {
		utils.WriteError(w, http.StatusServiceUnavailable, "Records API is not configured")
		return
	}
	logrus.Errorf("%s: %v", op, err)
	utils.WriteError(w, http.StatusBadGateway, "Failed to reach records API")
}
