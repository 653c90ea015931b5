// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package validation

import (
	"math"
	"strings"
	"sync"
	"testing"
)

type testSwipe struct {
	Subject string    `json:"subject" validate:"required,subject"`
	Mode    string    `json:"mode" validate:"required,mode"`
	ItemID  int64     `json:"item_id" validate:"gt=0"`
	Tags    []string  `json:"tags" validate:"max=3,dive,max=10"`
	Vector  []float32 `json:"vector,omitempty" validate:"omitempty,min=1,finite"`
}

func validSwipe() testSwipe {
	return testSwipe{Subject: "ada", Mode: "coffee", ItemID: 1, Tags: []string{"jazz"}}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*testSwipe)
		wantField string
		wantTag   string
	}{
		{"valid", func(*testSwipe) {}, "", ""},
		{"mode is case-insensitive", func(s *testSwipe) { s.Mode = "Matcha" }, "", ""},
		{"missing subject", func(s *testSwipe) { s.Subject = "" }, "subject", "required"},
		{"subject with colon", func(s *testSwipe) { s.Subject = "a:b" }, "subject", "subject"},
		{"unknown mode", func(s *testSwipe) { s.Mode = "tea" }, "mode", "mode"},
		{"non-positive item", func(s *testSwipe) { s.ItemID = 0 }, "item_id", "gt"},
		{"too many tags", func(s *testSwipe) { s.Tags = []string{"a", "b", "c", "d"} }, "tags", "max"},
		{"NaN vector", func(s *testSwipe) { s.Vector = []float32{1, float32(math.NaN())} }, "vector", "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSwipe()
			tt.mutate(&s)
			verr := ValidateStruct(&s)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("got %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	s := validSwipe()
	s.Mode = "tea"
	apiErr := ValidateStruct(&s).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s", apiErr.Code)
	}
	if apiErr.Message != "mode must be one of: coffee, matcha" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "mode" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	s = validSwipe()
	s.Subject = ""
	s.ItemID = -1
	apiErr = ValidateStruct(&s).ToAPIError()
	if !strings.Contains(apiErr.Message, "subject is required") || !strings.Contains(apiErr.Message, "item_id must be greater than 0") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]any)
	if !ok || len(fields) != 2 {
		t.Errorf("Details = %v", apiErr.Details)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty Message = %q", empty.Message)
	}
}

func TestMinMaxMessages(t *testing.T) {
	t.Parallel()

	type text struct {
		Blurb string `json:"blurb" validate:"max=5"`
	}
	verr := ValidateStruct(&text{Blurb: "too long"})
	if verr == nil || verr.Error() != "blurb must be at most 5 characters" {
		t.Errorf("got %v", verr)
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	results := make(chan any, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- GetValidator()
		}()
	}
	wg.Wait()
	close(results)

	first := GetValidator()
	for v := range results {
		if v != first {
			t.Fatal("GetValidator returned different instances")
		}
	}
}
