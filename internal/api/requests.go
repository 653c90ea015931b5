// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/events"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// maxBodyBytes caps request bodies. Item vectors dominate the size.
const maxBodyBytes = 1 << 20

// defaultRecentLimit is the recent-activity window used by the recent endpoint.
const defaultRecentLimit = 5

// SwipeRequest is the body of POST /api/v1/swipes.
//
// The mode is given either as "mode" or as the legacy "is_matcha" flag.
// View time is "duration_ms", or derived from "view_start"/"view_end" when
// duration_ms is absent.
type SwipeRequest struct {
	Subject    string     `json:"subject" validate:"required,subject"`
	ItemID     int64      `json:"item_id" validate:"required,gt=0"`
	Mode       string     `json:"mode" validate:"required_without=IsMatcha,omitempty,mode"`
	IsMatcha   *bool      `json:"is_matcha"`
	Title      string     `json:"title" validate:"max=256"`
	Tags       []string   `json:"tags" validate:"max=32,dive,max=64"`
	Liked      *bool      `json:"liked" validate:"required"`
	DurationMs *int64     `json:"duration_ms" validate:"omitempty,gte=0,lte=86400000"`
	ViewStart  *time.Time `json:"view_start"`
	ViewEnd    *time.Time `json:"view_end" validate:"required_with=ViewStart"`
}

// errViewWindow is returned when view_end precedes view_start.
var errViewWindow = errors.New("view_end must not be before view_start")

// errViewTooLong is returned when the view window exceeds events.MaxDurationMs.
var errViewTooLong = errors.New("view window must not exceed one day")

// event converts a validated request into a swipe event.
func (r *SwipeRequest) event() (events.SwipeEvent, error) {
	mode := analytics.ModeCoffee
	if r.Mode != "" {
		m, err := analytics.ParseMode(r.Mode)
		if err != nil {
			return events.SwipeEvent{}, err
		}
		mode = m
	} else if r.IsMatcha != nil {
		mode = analytics.ModeFromMatcha(*r.IsMatcha)
	}

	var durationMs int64
	switch {
	case r.DurationMs != nil:
		durationMs = *r.DurationMs
	case r.ViewStart != nil && r.ViewEnd != nil:
		if r.ViewEnd.Before(*r.ViewStart) {
			return events.SwipeEvent{}, errViewWindow
		}
		durationMs = r.ViewEnd.Sub(*r.ViewStart).Milliseconds()
		if durationMs > events.MaxDurationMs {
			return events.SwipeEvent{}, errViewTooLong
		}
	}

	return events.SwipeEvent{
		Subject:    r.Subject,
		ItemID:     r.ItemID,
		Mode:       mode,
		Title:      strings.TrimSpace(r.Title),
		Tags:       r.Tags,
		DurationMs: durationMs,
		Liked:      *r.Liked,
	}, nil
}

// ProfileRequest is the body of PUT /api/v1/users/{subject}/profiles/{mode}.
type ProfileRequest struct {
	Text string   `json:"text" validate:"required,max=4000"`
	Tags []string `json:"tags" validate:"max=32,dive,max=64"`
}

// ItemRequest is the body of POST /api/v1/items. When Vector is empty the
// item is embedded from its blurb and tags.
type ItemRequest struct {
	ID     int64         `json:"id" validate:"required,gt=0"`
	Mode   string        `json:"mode" validate:"required,mode"`
	Title  string        `json:"title" validate:"required,max=256"`
	Blurb  string        `json:"blurb" validate:"max=4000"`
	Tags   []string      `json:"tags" validate:"max=32,dive,max=64"`
	Vector vector.Vector `json:"vector" validate:"omitempty,max=8192,finite"`
}

// subjectModeParams are the path parameters shared by per-user routes.
type subjectModeParams struct {
	Subject string `json:"subject" validate:"required,subject"`
	Mode    string `json:"mode" validate:"required,mode"`
}

// subjectParams is the path parameter of per-user routes without a mode.
type subjectParams struct {
	Subject string `json:"subject" validate:"required,subject"`
}

// RecommendQuery holds the query string of the recommendations route.
// K of zero asks for nothing; an absent k is filled in by the handler.
type RecommendQuery struct {
	Subject string `json:"subject" validate:"required,subject"`
	Mode    string `json:"mode" validate:"required,mode"`
	K       int    `json:"k" validate:"gte=0,lte=1000"`
	Debug   bool   `json:"debug"`
}

// RecentQuery holds the query string of the recent-activity route.
type RecentQuery struct {
	Subject string `json:"subject" validate:"required,subject"`
	Limit   int    `json:"limit" validate:"gte=1,lte=100"`
}

// itemParams are the path parameters of GET /api/v1/items/{mode}/{id}.
type itemParams struct {
	Mode string `json:"mode" validate:"required,mode"`
	ID   int64  `json:"id" validate:"required,gt=0"`
}

// errBodyTooLarge is returned by decodeJSON when the body exceeds maxBodyBytes.
var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads a single JSON document from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

// intQuery parses an integer query parameter. Missing values yield def;
// malformed values yield ok=false.
func intQuery(r *http.Request, name string, def int) (value int, ok bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// boolQuery parses a boolean query parameter; anything unparsable is false.
func boolQuery(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
