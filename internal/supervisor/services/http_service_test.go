// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// failingShutdownServer wraps a real server but reports a shutdown error.
type failingShutdownServer struct {
	*http.Server
	err error
}

func (f *failingShutdownServer) Shutdown(ctx context.Context) error {
	_ = f.Server.Shutdown(ctx)
	return f.err
}

func newTestServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	return &http.Server{Handler: mux, ReadHeaderTimeout: time.Second}
}

func waitForAddr(t *testing.T, svc *HTTPServerService) net.Addr {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a := svc.Addr(); a != nil {
			return a
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("server never bound")
	return nil
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, d := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(newTestServer(), "127.0.0.1:0", d, zerolog.Nop())
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: got %v, want 10s", d, svc.shutdownTimeout)
		}
	}
}

func TestHTTPServerService_ServesAndShutsDown(t *testing.T) {
	svc := NewHTTPServerService(newTestServer(), "127.0.0.1:0", time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	addr := waitForAddr(t, svc)
	resp, err := http.Get("http://" + addr.String() + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("body = %q, want pong", body)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if svc.Addr() != nil {
		t.Error("Addr() should be nil after stop")
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	svc := NewHTTPServerService(newTestServer(), ln.Addr().String(), time.Second, zerolog.Nop())
	if err := svc.Serve(context.Background()); err == nil {
		t.Fatal("expected listen error on occupied port")
	}
}

func TestHTTPServerService_ShutdownError(t *testing.T) {
	want := errors.New("drain timeout")
	srv := &failingShutdownServer{Server: newTestServer(), err: want}
	svc := NewHTTPServerService(srv, "127.0.0.1:0", time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	waitForAddr(t, svc)

	cancel()
	if err := <-errCh; !errors.Is(err, want) {
		t.Errorf("Serve() = %v, want %v", err, want)
	}
}

func TestHTTPServerService_String(t *testing.T) {
	svc := NewHTTPServerService(newTestServer(), ":0", time.Second, zerolog.Nop())
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}
