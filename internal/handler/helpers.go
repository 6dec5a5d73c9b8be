// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains the HTTP handlers for the admin console and
// the public frontend pages.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bhasha-cms/bhasha/internal/render"
)

// Redirect targets used across handlers.
const (
	redirectAdmin = "/admin"
	redirectLogin = "/admin/login"
)

// ParseIDParam extracts and parses the {id} route parameter.
func ParseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// flashAndRedirect sets a flash message and redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, target, message, flashType string) {
	renderer.SetFlash(r, message, flashType)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, target, message string) {
	flashAndRedirect(w, r, renderer, target, message, "error")
}

// logAndInternalError logs an error and responds with 500.
func logAndInternalError(w http.ResponseWriter, msg string, args ...any) {
	slog.Error(msg, args...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
