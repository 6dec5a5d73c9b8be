// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bhasha-cms/bhasha/internal/audit"
	"github.com/bhasha-cms/bhasha/internal/cache"
	"github.com/bhasha-cms/bhasha/internal/imaging"
	"github.com/bhasha-cms/bhasha/internal/middleware"
	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/policy"
	"github.com/bhasha-cms/bhasha/internal/render"
	"github.com/bhasha-cms/bhasha/internal/store"
)

// maxUploadSize caps post image uploads at 10 MB.
const maxUploadSize = 10 << 20

// PostHandler implements post creation, editing, and deletion.
type PostHandler struct {
	queries   *store.Queries
	renderer  *render.Renderer
	processor *imaging.Processor
	recorder  *audit.Recorder
	languages *cache.LanguageCache
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(db *sql.DB, renderer *render.Renderer, processor *imaging.Processor, rec *audit.Recorder, languages *cache.LanguageCache) *PostHandler {
	return &PostHandler{
		queries:   store.New(db),
		renderer:  renderer,
		processor: processor,
		recorder:  rec,
		languages: languages,
	}
}

// NewForm renders the empty post form.
func (h *PostHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	langs := policy.EffectiveLanguages(user)
	if len(langs) == 0 {
		flashError(w, r, h.renderer, redirectAdmin, "You have no languages assigned.")
		return
	}

	if err := h.renderer.Render(w, r, "admin/post_form", render.TemplateData{
		Title: "New post",
		User:  user,
		Data: map[string]any{
			"Languages": model.FilterLanguages(langs),
		},
	}); err != nil {
		logAndInternalError(w, "render post form", "error", err)
	}
}

// Create handles the new-post form submission.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		flashError(w, r, h.renderer, "/admin/posts/new", "Upload too large or malformed form.")
		return
	}

	language := r.FormValue("language")
	if !model.IsValidLanguageCode(language) {
		flashError(w, r, h.renderer, "/admin/posts/new", "Unknown language.")
		return
	}
	if d := policy.CanCreate(user, language); !d.Allowed {
		slog.Warn("post create denied", "user_id", user.ID, "language", language, "reason", d.Reason)
		flashError(w, r, h.renderer, redirectAdmin, "You cannot post in "+model.LanguageLabel(language)+".")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		flashError(w, r, h.renderer, "/admin/posts/new", "An image is required.")
		return
	}
	defer file.Close()

	result, err := h.processor.Process(file, header.Filename)
	if err != nil {
		slog.Warn("image processing failed", "error", err, "filename", header.Filename)
		flashError(w, r, h.renderer, "/admin/posts/new", "Could not process the image: "+err.Error())
		return
	}

	post, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		Headline:  nullTrimmed(r.FormValue("headline")),
		Strap:     nullTrimmed(r.FormValue("strap")),
		ImagePath: result.ImagePath,
		ThumbPath: sql.NullString{String: result.ThumbPath, Valid: result.ThumbPath != ""},
		ImageAlt:  nullTrimmed(r.FormValue("image_alt")),
		Language:  language,
		LinkURL:   nullTrimmed(r.FormValue("link_url")),
		CreatedBy: sql.NullInt64{Int64: user.ID, Valid: true},
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// The row never made it in, so the files are orphans.
		if delErr := h.processor.Delete(result.ImagePath, result.ThumbPath); delErr != nil {
			slog.Error("orphaned upload cleanup failed", "error", delErr)
		}
		logAndInternalError(w, "create post", "error", err)
		return
	}

	h.recorder.RecordActivity(r.Context(), user.ID, model.ActionCreate, post.ID, map[string]any{
		"language": language,
	})
	h.languages.Invalidate(r.Context())

	slog.Info("post created", "post_id", post.ID, "user_id", user.ID, "language", language)
	flashAndRedirect(w, r, h.renderer, redirectAdmin+"?lang="+language, "Post created.", "success")
}

// EditForm renders the post form pre-filled with an existing post.
func (h *PostHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "load post", "error", err, "post_id", id)
		return
	}

	if !policy.CanAccessLanguage(user, post.Language) {
		slog.Warn("post edit denied", "user_id", user.ID, "post_id", id, "language", post.Language)
		flashError(w, r, h.renderer, redirectAdmin, "You cannot edit posts in "+model.LanguageLabel(post.Language)+".")
		return
	}

	if err := h.renderer.Render(w, r, "admin/post_form", render.TemplateData{
		Title: "Edit post",
		User:  user,
		Data: map[string]any{
			"Post":      &post,
			"Languages": model.FilterLanguages(policy.EffectiveLanguages(user)),
			"CanDelete": policy.CanDelete(user).Allowed,
		},
	}); err != nil {
		logAndInternalError(w, "render post form", "error", err)
	}
}

// Update handles the edit-post form submission. A new image is optional;
// when present it replaces the stored files.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	editPath := fmt.Sprintf("/admin/posts/%d", id)

	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "load post", "error", err, "post_id", id)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		flashError(w, r, h.renderer, editPath, "Upload too large or malformed form.")
		return
	}

	newLanguage := r.FormValue("language")
	if !model.IsValidLanguageCode(newLanguage) {
		flashError(w, r, h.renderer, editPath, "Unknown language.")
		return
	}
	// Moving a post between languages needs access to both sides.
	if d := policy.CanEdit(user, post.Language, newLanguage); !d.Allowed {
		slog.Warn("post edit denied", "user_id", user.ID, "post_id", id, "reason", d.Reason)
		flashError(w, r, h.renderer, redirectAdmin, "You cannot edit this post: "+d.Reason)
		return
	}

	imagePath := post.ImagePath
	thumbPath := post.ThumbPath
	var oldImagePath, oldThumbPath string

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		result, err := h.processor.Process(file, header.Filename)
		if err != nil {
			slog.Warn("image processing failed", "error", err, "filename", header.Filename)
			flashError(w, r, h.renderer, editPath, "Could not process the image: "+err.Error())
			return
		}
		oldImagePath = post.ImagePath
		if post.ThumbPath.Valid {
			oldThumbPath = post.ThumbPath.String
		}
		imagePath = result.ImagePath
		thumbPath = sql.NullString{String: result.ThumbPath, Valid: result.ThumbPath != ""}
	}

	oldLanguage := post.Language
	if err := h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		ID:        id,
		Headline:  nullTrimmed(r.FormValue("headline")),
		Strap:     nullTrimmed(r.FormValue("strap")),
		ImagePath: imagePath,
		ThumbPath: thumbPath,
		ImageAlt:  nullTrimmed(r.FormValue("image_alt")),
		Language:  newLanguage,
		LinkURL:   nullTrimmed(r.FormValue("link_url")),
	}); err != nil {
		logAndInternalError(w, "update post", "error", err, "post_id", id)
		return
	}

	// Old files are only removed once the row points at the new ones.
	if oldImagePath != "" {
		if err := h.processor.Delete(oldImagePath, oldThumbPath); err != nil {
			slog.Error("replaced image cleanup failed", "error", err, "post_id", id)
		}
	}

	meta := map[string]any{"language": newLanguage}
	if oldLanguage != newLanguage {
		meta["from"] = oldLanguage
	}
	h.recorder.RecordActivity(r.Context(), user.ID, model.ActionEdit, id, meta)
	if oldLanguage != newLanguage {
		h.languages.Invalidate(r.Context())
	}

	slog.Info("post updated", "post_id", id, "user_id", user.ID)
	flashAndRedirect(w, r, h.renderer, redirectAdmin+"?lang="+newLanguage, "Post updated.", "success")
}

// Delete removes a post and its image files. Admin only.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if d := policy.CanDelete(user); !d.Allowed {
		slog.Warn("post delete denied", "user_id", user.ID, "reason", d.Reason)
		flashError(w, r, h.renderer, redirectAdmin, "Only administrators can delete posts.")
		return
	}

	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Deleting an already-gone post is not an error.
			flashAndRedirect(w, r, h.renderer, redirectAdmin, "Post already deleted.", "info")
			return
		}
		logAndInternalError(w, "load post", "error", err, "post_id", id)
		return
	}

	if err := h.queries.DeletePost(r.Context(), id); err != nil {
		logAndInternalError(w, "delete post", "error", err, "post_id", id)
		return
	}

	thumb := ""
	if post.ThumbPath.Valid {
		thumb = post.ThumbPath.String
	}
	if err := h.processor.Delete(post.ImagePath, thumb); err != nil {
		slog.Error("deleted post file cleanup failed", "error", err, "post_id", id)
	}

	h.recorder.RecordActivity(r.Context(), user.ID, model.ActionDelete, id, map[string]any{
		"language": post.Language,
		"headline": post.Headline.String,
	})
	h.languages.Invalidate(r.Context())

	slog.Info("post deleted", "post_id", id, "user_id", user.ID)
	flashAndRedirect(w, r, h.renderer, redirectAdmin+"?lang="+post.Language, "Post deleted.", "success")
}

// nullTrimmed trims a form value and wraps it, empty meaning NULL.
func nullTrimmed(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
