// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/profile"
	"github.com/tomtom215/brewmatch/internal/store"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// ItemCreated is the body returned for a registered item.
type ItemCreated struct {
	ID         int64          `json:"id"`
	Mode       analytics.Mode `json:"mode"`
	Dimensions int            `json:"dimensions"`
	Embedded   bool           `json:"embedded"`
}

// CreateItem handles POST /api/v1/items.
//
// An explicit vector must match the embedder's dimension so the catalog
// stays rankable; otherwise blurb and tags are embedded, falling back to
// the title when both are empty.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	var req ItemRequest
	if !rw.decode(&req) || !rw.validate(&req) {
		return
	}
	mode, _ := analytics.ParseMode(req.Mode)
	tags := normalizedTags(req.Tags)

	vec := req.Vector
	embedded := false
	if len(vec) == 0 {
		text := profile.ComposeText(req.Blurb, tags)
		if text == "" {
			text = strings.TrimSpace(req.Title)
		}
		v, err := h.embedder.Embed(r.Context(), text)
		if err != nil {
			rw.fromError(err)
			return
		}
		vec = v
		embedded = true
	} else if want := h.embedder.Dimensions(); want > 0 && len(vec) != want {
		rw.fromError(&vector.DimensionError{Want: want, Got: len(vec)})
		return
	}

	item := store.Item{
		ID:     req.ID,
		Mode:   mode,
		Title:  strings.TrimSpace(req.Title),
		Blurb:  strings.TrimSpace(req.Blurb),
		Tags:   tags,
		Vector: vec,
	}
	if err := h.store.SaveItem(r.Context(), item); err != nil {
		rw.fromError(err)
		return
	}

	rw.status(http.StatusCreated, ItemCreated{
		ID:         item.ID,
		Mode:       item.Mode,
		Dimensions: len(vec),
		Embedded:   embedded,
	})
}

// GetItem handles GET /api/v1/items/{mode}/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		rw.badQuery("id")
		return
	}
	params := itemParams{Mode: chi.URLParam(r, "mode"), ID: id}
	if !rw.validate(&params) {
		return
	}
	mode, _ := analytics.ParseMode(params.Mode)

	item, err := h.store.Item(r.Context(), mode, params.ID)
	if err != nil {
		rw.fromError(err)
		return
	}
	rw.ok(item)
}
