package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrewpaige1/accent-api/utils"
	"github.com/andrewpaige1/accent-api/wiktionary"
	"github.com/sirupsen/logrus"
)

type AudioFinder interface {
	Audio(ctx context.Context, word string) ([]wiktionary.Audio, error)
	USAudio(ctx context.Context, word string) ([]wiktionary.Audio, error)
}

type USAudioLookup interface {
	USAudioURL(ctx context.Context, word string) (string, error)
}

// AudioHandler proxies pronunciation lookups so browsers avoid cross-origin calls.
type AudioHandler struct {
	Wiktionary AudioFinder
	Dictionary USAudioLookup
}

// GET /api/dictionary/wiktionary/audio/{word}
func (h *AudioHandler) GetWiktionaryAudio(w http.ResponseWriter, r *http.Request) {
	h.writeAudio(w, r, "GetWiktionaryAudio", h.Wiktionary.Audio)
}

// GET /api/dictionary/wiktionary/audio/{word}/us
func (h *AudioHandler) GetWiktionaryUSAudio(w http.ResponseWriter, r *http.Request) {
	h.writeAudio(w, r, "GetWiktionaryUSAudio", h.Wiktionary.USAudio)
}

func (h *AudioHandler) writeAudio(w http.ResponseWriter, r *http.Request, op string,
	find func(context.Context, string) ([]wiktionary.Audio, error)) {
	word := r.PathValue("word")
	if word == "" {
		utils.WriteError(w, http.StatusBadRequest, "word is required")
		return
	}

	audios, err := find(r.Context(), word)
	if err != nil {
		if errors.Is(err, wiktionary.ErrWordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Word not found")
			return
		}
		logrus.Errorf("%s: %s: %v", op, word, err)
		utils.WriteError(w, http.StatusBadGateway, "Failed to fetch audio")
		return
	}

	utils.WriteJSON(w, http.StatusOK, audios)
}

// GetUSAudio returns one US recording for word, trying Wiktionary before dictionaryapi.dev.
// GET /api/dictionary/audio/{word}
func (h *AudioHandler) GetUSAudio(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	if word == "" {
		utils.WriteError(w, http.StatusBadRequest, "word is required")
		return
	}

	audios, err := h.Wiktionary.USAudio(r.Context(), word)
	if err != nil && !errors.Is(err, wiktionary.ErrWordNotFound) {
		logrus.Warnf("GetUSAudio: wiktionary lookup for %s failed: %v", word, err)
	}
	if len(audios) > 0 {
		utils.WriteJSON(w, http.StatusOK, map[string]string{
			"word":   word,
			"url":    audios[0].URL,
			"source": "wiktionary",
		})
		return
	}

	audioURL, err := h.Dictionary.USAudioURL(r.Context(), word)
	switch {
	case errors.Is(err, wiktionary.ErrWordNotFound), errors.Is(err, wiktionary.ErrNoAudio):
		utils.WriteError(w, http.StatusNotFound, "No US audio found")
		return
	case err != nil:
		logrus.Errorf("GetUSAudio: dictionaryapi lookup for %s failed: %v", word, err)
		utils.WriteError(w, http.StatusBadGateway, "Failed to fetch audio")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"word":   word,
		"url":    audioURL,
		"source": "dictionaryapi",
	})
}
