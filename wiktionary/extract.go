// Package wiktionary discovers pronunciation recordings for a word on Wiktionary, with
// dictionaryapi.dev as a second source for US audio.
package wiktionary

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

const (
	AccentUS      = "us"
	AccentUK      = "uk"
	AccentAU      = "au"
	AccentUnknown = "unknown"
)

// lingualibreEnglish marks Lingua Libre recordings of English (Wikidata Q1860).
const lingualibreEnglish = "LL-Q1860"

var (
	fileTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)data-mwtitle="([^"]*\.(?:ogg|mp3|wav|oga))"`),
		regexp.MustCompile(`(?i)href="/wiki/File:([^"]*\.(?:ogg|mp3|wav|oga))"`),
	}

	accentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`en-([a-z]{2})-`),
		regexp.MustCompile(`En-([a-z]{2})-`),
	}

	regions = map[string]string{
		AccentUS: "American English",
		AccentUK: "British English",
		AccentAU: "Australian English",
	}
)

// ExtractAudioFiles returns the English audio file names referenced in rendered page HTML,
// in order of first appearance and without duplicates.
func ExtractAudioFiles(html, word string) []string {
	var files []string
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		files = append(files, name)
	}

	for _, pattern := range fileTitlePatterns {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			name := m[1]
			if i := strings.LastIndex(name, "/"); i >= 0 {
				name = name[i+1:]
			}
			if strings.Contains(name, ".") && IsEnglish(name) {
				add(name)
			}
		}
	}

	quoted := regexp.QuoteMeta(word)
	wordPatterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)en-us-` + quoted + `\.(?:ogg|mp3|wav|oga)`),
		regexp.MustCompile(`(?i)en-uk-` + quoted + `\.(?:ogg|mp3|wav|oga)`),
		regexp.MustCompile(`(?i)En-us-` + quoted + `-[a-z]+\.(?:ogg|mp3|wav|oga)`),
	}
	for _, pattern := range wordPatterns {
		for _, m := range pattern.FindAllString(html, -1) {
			add(m)
		}
	}
	return files
}

func IsEnglish(fileName string) bool {
	return strings.Contains(fileName, "en-") ||
		strings.Contains(fileName, "En-") ||
		strings.Contains(fileName, lingualibreEnglish) ||
		strings.Contains(fileName, "(eng)")
}

// IsUS reports whether a file is a US recording. Lingua Libre English files are accepted
// since they are predominantly US speakers.
func IsUS(fileName string) bool {
	return strings.Contains(fileName, "en-us-") ||
		strings.Contains(fileName, "En-us-") ||
		strings.Contains(fileName, lingualibreEnglish)
}

// AccentOf derives the accent code from a file name such as En-us-water.ogg.
func AccentOf(fileName string) string {
	for _, p := range accentPatterns {
		if m := p.FindStringSubmatch(fileName); m != nil {
			return m[1]
		}
	}
	switch {
	case strings.Contains(fileName, "us-") || strings.Contains(fileName, "US-"):
		return AccentUS
	case strings.Contains(fileName, "uk-") || strings.Contains(fileName, "UK-"):
		return AccentUK
	case strings.Contains(fileName, "au-") || strings.Contains(fileName, "AU-"):
		return AccentAU
	}
	return AccentUnknown
}

func RegionOf(accent string) string {
	if r, ok := regions[accent]; ok {
		return r
	}
	return "Unknown"
}

// dedupeByURL keeps the first recording per URL.
func dedupeByURL(audios []Audio) []Audio {
	return lo.UniqBy(audios, func(a Audio) string { return a.URL })
}
