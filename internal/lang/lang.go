// Package lang detects the language of short chat messages.
// The bot serves Arabic, French and English speakers, so detection only
// needs to separate those three on utterances that may be a single word.
package lang

import (
	"strings"
	"unicode"
)

// Language is an ISO 639-1 code for one of the supported languages.
type Language string

const (
	Arabic  Language = "ar"
	French  Language = "fr"
	English Language = "en"
)

// frenchMarkers are function words and short phrases that strongly
// suggest French. Accented forms are matched separately via diacritics.
var frenchMarkers = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {},
	"je": {}, "tu": {}, "il": {}, "elle": {}, "nous": {}, "vous": {},
	"est": {}, "sont": {}, "et": {}, "ou": {}, "mais": {}, "pour": {},
	"avec": {}, "dans": {}, "sur": {}, "que": {}, "qui": {}, "quoi": {},
	"comment": {}, "pourquoi": {}, "quand": {}, "quelle": {}, "quel": {},
	"bonjour": {}, "bonsoir": {}, "merci": {}, "salut": {},
	"inscription": {}, "universite": {}, "faculte": {},
	"s'inscrire": {}, "frais": {}, "bourse": {}, "horaires": {},
}

// frenchDiacritics are letters that appear in French but not English.
const frenchDiacritics = "àâäéèêëîïôöùûüçœ"

// Detect returns the detected language of text.
// Arabic wins whenever more than one Arabic letter is present. French is
// chosen when diacritics and function words make up more than 15% of the
// words, or on two function-word hits. English is the fallback for
// everything else, including empty input.
func Detect(text string) Language {
	if countArabic(text) > 1 {
		return Arabic
	}

	lower := strings.ToLower(text)

	diacritics := 0
	for _, r := range lower {
		if strings.ContainsRune(frenchDiacritics, r) {
			diacritics++
		}
	}

	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	hits := 0
	for _, w := range words {
		if _, ok := frenchMarkers[w]; ok {
			hits++
		}
	}

	if len(words) > 0 {
		ratio := float64(diacritics+hits) / float64(len(words))
		if ratio > 0.15 || hits >= 2 {
			return French
		}
	}

	return English
}

// countArabic counts letters in the Arabic Unicode blocks, including the
// supplement and extended ranges used by Maghrebi orthography.
func countArabic(text string) int {
	count := 0
	for _, r := range text {
		switch {
		case r >= 0x0600 && r <= 0x06FF:
			count++
		case r >= 0x0750 && r <= 0x077F:
			count++
		case r >= 0x08A0 && r <= 0x08FF:
			count++
		}
	}
	return count
}

// Name returns the English display name of a language.
func (l Language) Name() string {
	switch l {
	case Arabic:
		return "Arabic"
	case French:
		return "French"
	default:
		return "English"
	}
}
