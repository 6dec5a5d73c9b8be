// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package policy implements the language-based access control model for
// the admin console. Decisions are pure functions of the caller's role and
// assigned language set; the public feed is never gated here.
package policy

import (
	"fmt"

	"github.com/bhasha-cms/bhasha/internal/model"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string // set only on deny
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny returns a negative decision with a reason.
func Deny(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// EffectiveLanguages returns the language codes the user may work in:
// the full fixed set for admins, the assigned set for editors. Codes
// outside the fixed set are dropped.
func EffectiveLanguages(u *model.User) []string {
	if u == nil {
		return nil
	}
	if u.IsAdmin() {
		return model.AllLanguageCodes()
	}
	var out []string
	for _, code := range u.LanguageCodes() {
		if model.IsValidLanguageCode(code) {
			out = append(out, code)
		}
	}
	return out
}

// CanAccessLanguage reports whether lang is in the user's effective set.
func CanAccessLanguage(u *model.User, lang string) bool {
	for _, code := range EffectiveLanguages(u) {
		if code == lang {
			return true
		}
	}
	return false
}

// CanCreate checks whether the user may create a post in lang.
func CanCreate(u *model.User, lang string) Decision {
	if u == nil {
		return Deny("not authenticated")
	}
	if !CanAccessLanguage(u, lang) {
		return Deny("language %q is not in your assigned set", lang)
	}
	return Allow
}

// CanEdit checks whether the user may edit a post currently tagged
// oldLang and retag it newLang. Both languages must be in the user's
// effective set; moving a post out of (or into) a language you do not
// hold is denied.
func CanEdit(u *model.User, oldLang, newLang string) Decision {
	if u == nil {
		return Deny("not authenticated")
	}
	if !CanAccessLanguage(u, oldLang) {
		return Deny("language %q is not in your assigned set", oldLang)
	}
	if !CanAccessLanguage(u, newLang) {
		return Deny("language %q is not in your assigned set", newLang)
	}
	return Allow
}

// CanDelete checks whether the user may delete posts. Admin only,
// regardless of language.
func CanDelete(u *model.User) Decision {
	if u == nil {
		return Deny("not authenticated")
	}
	if !u.IsAdmin() {
		return Deny("only admins may delete posts")
	}
	return Allow
}

// CanManageUsers checks whether the user may create, block, unblock or
// delete accounts. Admin only.
func CanManageUsers(u *model.User) Decision {
	if u == nil {
		return Deny("not authenticated")
	}
	if !u.IsAdmin() {
		return Deny("only admins may manage users")
	}
	return Allow
}
