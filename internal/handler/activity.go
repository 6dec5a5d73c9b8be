// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/bhasha-cms/bhasha/internal/audit"
	"github.com/bhasha-cms/bhasha/internal/geoip"
	"github.com/bhasha-cms/bhasha/internal/middleware"
	"github.com/bhasha-cms/bhasha/internal/render"
	"github.com/bhasha-cms/bhasha/internal/store"
)

// ActivityHandler serves the audit dashboard. Admin only.
type ActivityHandler struct {
	queries  *store.Queries
	recorder *audit.Recorder
	renderer *render.Renderer
	geo      *geoip.Lookup
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(q *store.Queries, rec *audit.Recorder, renderer *render.Renderer, geo *geoip.Lookup) *ActivityHandler {
	return &ActivityHandler{
		queries:  q,
		recorder: rec,
		renderer: renderer,
		geo:      geo,
	}
}

type postCountView struct {
	Username string
	Count    int64
}

type loginView struct {
	Username    string
	LoginTime   time.Time
	IP          string
	CountryName string
	Client      string
}

// Index renders the activity dashboard: per-user post counts, recent
// logins, content actions, and recent system events.
func (h *ActivityHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	ctx := r.Context()

	counts, err := h.recorder.PostCountsByUser(ctx)
	if err != nil {
		logAndInternalError(w, "load post counts", "error", err)
		return
	}
	countViews := make([]postCountView, len(counts))
	for i, c := range counts {
		countViews[i] = postCountView{Username: c.Username, Count: c.PostsCreated}
	}

	logins, err := h.recorder.RecentLogins(ctx, audit.DefaultLimit)
	if err != nil {
		logAndInternalError(w, "load logins", "error", err)
		return
	}
	loginViews := make([]loginView, len(logins))
	for i, l := range logins {
		loginViews[i] = loginView{
			Username:    l.Username,
			LoginTime:   l.LoginTime,
			IP:          l.IP,
			CountryName: geoip.CountryName(l.Country),
			Client:      clientSummary(l.UserAgent),
		}
	}

	activities, err := h.recorder.ActivityStream(ctx, audit.DefaultLimit)
	if err != nil {
		logAndInternalError(w, "load activities", "error", err)
		return
	}

	events, err := h.queries.RecentEvents(ctx, audit.DefaultLimit)
	if err != nil {
		logAndInternalError(w, "load events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin/activity", render.TemplateData{
		Title: "Activity",
		User:  user,
		Data: map[string]any{
			"PostCounts": countViews,
			"Logins":     loginViews,
			"Activities": activities,
			"Events":     events,
		},
	}); err != nil {
		logAndInternalError(w, "render activity page", "error", err)
	}
}

// clientSummary compresses a raw user agent into "Browser x.y on OS".
func clientSummary(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.Parse(raw)
	switch {
	case ua.Name != "" && ua.OS != "":
		return fmt.Sprintf("%s %s on %s", ua.Name, ua.Version, ua.OS)
	case ua.Name != "":
		return ua.Name
	default:
		if len(raw) > 60 {
			return raw[:60]
		}
		return raw
	}
}
