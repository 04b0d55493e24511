package opshttp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pranavnadakkal/portfolio/internal/health"
	"github.com/pranavnadakkal/portfolio/internal/log"
)

func get(h http.Handler, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewHandler_Health(t *testing.T) {
	h := NewHandler(log.Nop(), Options{
		Health:    health.Fixed(true, ""),
		Readiness: health.Fixed(false, "profile: no active snapshot"),
	})

	if rec := get(h, "/-/healthy", "127.0.0.1:1"); rec.Code != http.StatusOK {
		t.Errorf("healthy: status = %d", rec.Code)
	}
	rec := get(h, "/-/ready", "127.0.0.1:1")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "no active snapshot") {
		t.Errorf("ready: status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestNewHandler_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# HELP fake_metric\n"))
	})

	h := NewHandler(log.Nop(), Options{Metrics: metrics})
	if rec := get(h, "/metrics", "10.0.0.1:1"); !strings.Contains(rec.Body.String(), "fake_metric") {
		t.Errorf("metrics body = %q", rec.Body.String())
	}

	h = NewHandler(log.Nop(), Options{})
	if rec := get(h, "/metrics", "10.0.0.1:1"); rec.Code != http.StatusNotFound {
		t.Errorf("nil metrics: status = %d, want 404", rec.Code)
	}
}

func TestNewHandler_Pprof(t *testing.T) {
	on := NewHandler(log.Nop(), Options{EnablePprof: true})
	if rec := get(on, "/debug/pprof/", "127.0.0.1:1"); rec.Code != http.StatusOK {
		t.Errorf("enabled: status = %d", rec.Code)
	}
	off := NewHandler(log.Nop(), Options{})
	if rec := get(off, "/debug/pprof/", "127.0.0.1:1"); rec.Code != http.StatusNotFound {
		t.Errorf("disabled: status = %d, want 404", rec.Code)
	}
}

func TestRequireNonPublicNetwork(t *testing.T) {
	h := NewHandler(log.Nop(), Options{})

	allowed := []string{"127.0.0.1:1", "[::1]:1", "10.0.0.1:1", "172.16.0.1:1", "192.168.1.1:1", "169.254.1.1:1", "[::ffff:10.0.0.1]:1"}
	for _, addr := range allowed {
		if rec := get(h, "/-/healthy", addr); rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", addr, rec.Code)
		}
	}

	denied := []string{"8.8.8.8:1", "203.0.113.1:80", "[::ffff:8.8.8.8]:1", "", "not-an-address", "999.999.999.999:1"}
	for _, addr := range denied {
		if rec := get(h, "/-/healthy", addr); rec.Code != http.StatusForbidden {
			t.Errorf("%q: status = %d, want 403", addr, rec.Code)
		}
	}
}

func TestNewHandler_AllowPublic(t *testing.T) {
	h := NewHandler(log.Nop(), Options{AllowPublic: true})
	if rec := get(h, "/-/healthy", "8.8.8.8:1"); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestStart_ServesAndStops(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	ctx := context.Background()
	stop, err := Start(ctx, log.Nop(), Options{Port: port})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/-/healthy", port))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	stop2, err := Start(ctx, log.Nop(), Options{Port: port})
	if err != nil {
		t.Fatalf("restart on freed port: %v", err)
	}
	_ = stop2(ctx)
}
