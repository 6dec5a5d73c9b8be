// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Language represents one of the fixed content languages posts can be
// tagged with. The set is closed: editors are granted subsets of it and
// the public feed filters on it.
type Language struct {
	Code  string `json:"code"`  // ISO 639-1: en, hi, te, ...
	Label string `json:"label"` // English, Hindi, Telugu, ...
}

// DefaultLanguageCode is used when a post or user carries no language.
const DefaultLanguageCode = "en"

// AllLanguages is the fixed, ordered set of supported content languages.
var AllLanguages = []Language{
	{"en", "English"},
	{"hi", "Hindi"},
	{"te", "Telugu"},
	{"ml", "Malayalam"},
	{"ta", "Tamil"},
	{"kn", "Kannada"},
	{"bn", "Bangla"},
	{"gu", "Gujarati"},
	{"mr", "Marathi"},
}

// AllLanguageCodes returns the codes of AllLanguages in order.
func AllLanguageCodes() []string {
	codes := make([]string, len(AllLanguages))
	for i, l := range AllLanguages {
		codes[i] = l.Code
	}
	return codes
}

// IsValidLanguageCode reports whether code belongs to the fixed language set.
func IsValidLanguageCode(code string) bool {
	for _, l := range AllLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// LanguageLabel returns the display label for a code, or the code itself
// when it is not part of the fixed set.
func LanguageLabel(code string) string {
	for _, l := range AllLanguages {
		if l.Code == code {
			return l.Label
		}
	}
	return code
}

// FilterLanguages returns the subset of AllLanguages whose codes appear in
// codes, preserving the fixed set's order.
func FilterLanguages(codes []string) []Language {
	allowed := make(map[string]bool, len(codes))
	for _, c := range codes {
		allowed[c] = true
	}
	var out []Language
	for _, l := range AllLanguages {
		if allowed[l.Code] {
			out = append(out, l)
		}
	}
	return out
}
