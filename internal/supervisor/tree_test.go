// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/brewmatch/internal/store"
)

// flakyService fails its first failures runs, then blocks until canceled.
type flakyService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func (s *flakyService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failures {
		return errors.New("boom")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *flakyService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func newTree(t *testing.T, cfg TreeConfig) *Tree {
	t.Helper()
	tree, err := NewTree(quietLogger(), cfg)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	return tree
}

func mustAdd(t *testing.T, tree *Tree, layer Layer, svc *flakyService) {
	t.Helper()
	if _, err := tree.Add(layer, svc); err != nil {
		t.Fatalf("Add(%s, %s): %v", layer, svc.name, err)
	}
}

func TestNewTree(t *testing.T) {
	t.Run("applies default values for zero config", func(t *testing.T) {
		tree := newTree(t, TreeConfig{})
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}
		if tree.Config() != DefaultTreeConfig() {
			t.Errorf("config = %+v, want defaults %+v", tree.Config(), DefaultTreeConfig())
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree := newTree(t, TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
		if tree.Config().FailureThreshold != 2 || tree.Config().ShutdownTimeout != time.Second {
			t.Errorf("config = %+v", tree.Config())
		}
	})

	t.Run("rejects negative settings", func(t *testing.T) {
		for _, cfg := range []TreeConfig{
			{FailureThreshold: -1},
			{FailureDecay: -1},
			{FailureBackoff: -time.Second},
			{ShutdownTimeout: -time.Second},
		} {
			if _, err := NewTree(quietLogger(), cfg); err == nil {
				t.Errorf("NewTree(%+v) should fail", cfg)
			}
		}
	})

	t.Run("requires a logger", func(t *testing.T) {
		if _, err := NewTree(nil, TreeConfig{}); err == nil {
			t.Error("NewTree(nil) should fail")
		}
	})
}

func TestTreeAdd(t *testing.T) {
	tree := newTree(t, TreeConfig{})

	mustAdd(t, tree, LayerData, &flakyService{name: "badger-store"})
	mustAdd(t, tree, LayerData, &flakyService{name: "embedding-cache-janitor"})
	mustAdd(t, tree, LayerAPI, &flakyService{name: "http-server"})

	if _, err := tree.Add(Layer("billing"), &flakyService{name: "x"}); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("Add(unknown) = %v, want ErrUnknownLayer", err)
	}

	got := tree.Services()
	want := map[Layer][]string{
		LayerData: {"badger-store", "embedding-cache-janitor"},
		LayerAPI:  {"http-server"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Services() = %v, want %v", got, want)
	}

	got[LayerData][0] = "changed"
	if tree.Services()[LayerData][0] != "badger-store" {
		t.Error("Services shares its slices with the tree")
	}
}

func TestTreeRunsStoreMaintenance(t *testing.T) {
	st, err := store.Open(store.Config{InMemory: true, GCInterval: 10 * time.Millisecond, GCRatio: 0.5}, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer st.Close()

	tree := newTree(t, TreeConfig{ShutdownTimeout: time.Second})
	if _, err := tree.Add(LayerData, st); err != nil {
		t.Fatalf("Add(store): %v", err)
	}
	api := &flakyService{name: "api"}
	mustAdd(t, tree, LayerAPI, api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return api.starts.Load() >= 1 })
	if err := st.Ping(ctx); err != nil {
		t.Errorf("store unhealthy while supervised: %v", err)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}

func TestTreeFailureHandling(t *testing.T) {
	tree := newTree(t, TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := &flakyService{name: "failing", failures: 2}
	stable := &flakyService{name: "stable"}
	mustAdd(t, tree, LayerMessaging, failing)
	mustAdd(t, tree, LayerAPI, stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return failing.starts.Load() >= 3 })
	if stable.starts.Load() != 1 {
		t.Errorf("stable service starts = %d, want 1", stable.starts.Load())
	}

	cancel()
	<-errCh
}
