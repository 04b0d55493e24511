package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

func newJSON(t *testing.T, opts Options) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts.Writer = &buf
	opts.JsonFormat = true
	l, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ln := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if ln == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(ln), &m); err != nil {
			t.Fatalf("bad json line %q: %v", ln, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " INFO ": slog.LevelInfo, "": slog.LevelInfo,
		"warn": slog.LevelWarn, "Warning": slog.LevelWarn, "error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogger_BaseAndWithFields(t *testing.T) {
	l, buf := newJSON(t, Options{App: "portfolio", Version: "v1.0.0", Level: slog.LevelDebug})

	child := l.With("component", "site", 42, "dropped")
	child.Info(context.Background(), "rendered", "sections", 4)
	l.Debug(context.Background(), "plain")

	got := lines(t, buf)
	if len(got) != 2 {
		t.Fatalf("lines = %d", len(got))
	}
	first := got[0]
	if first["msg"] != "rendered" || first["app"] != "portfolio" || first["version"] != "v1.0.0" {
		t.Errorf("first line = %v", first)
	}
	if first["component"] != "site" || first["sections"] != float64(4) {
		t.Errorf("fields = %v", first)
	}
	if _, ok := got[1]["component"]; ok {
		t.Error("With leaked into parent logger")
	}
	src, _ := first["source"].(map[string]any)
	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source = %v, want caller file", src)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	l, buf := newJSON(t, Options{Level: slog.LevelWarn})
	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")
	if got := lines(t, buf); len(got) != 1 || got[0]["msg"] != "shown" {
		t.Fatalf("got %v", got)
	}
}

func TestLogger_ErrorEnrichment(t *testing.T) {
	l, buf := newJSON(t, Options{IncludeErrorLinks: true})

	root := errors.New("no such key")
	err := xerrors.Wrap(fmt.Errorf("fetch: %w", root), "load profile")
	l.Error(context.Background(), err, "reload failed")

	got := lines(t, buf)[0]
	if got["err"] != "load profile: fetch: no such key" {
		t.Errorf("err = %v", got["err"])
	}
	if got["error_type"] != "*errors.errorString" && got["error_type"] != "*fmt.wrapError" {
		t.Errorf("error_type = %v", got["error_type"])
	}
	if got["cause_type"] != "*errors.errorString" {
		t.Errorf("cause_type = %v", got["cause_type"])
	}
	chain, _ := got["error_chain"].([]any)
	if len(chain) != 3 {
		t.Errorf("error_chain = %v", chain)
	}
	links, _ := got["error_links"].([]any)
	if len(links) == 0 {
		t.Fatal("no error_links")
	}
	head, _ := links[0].(map[string]any)
	if fn, _ := head["func"].(string); !strings.HasSuffix(fn, "TestLogger_ErrorEnrichment") {
		t.Errorf("head link func = %v", head["func"])
	}
	if stack, _ := got["stack"].(string); !strings.Contains(stack, "TestLogger_ErrorEnrichment") {
		t.Errorf("stack = %q", stack)
	}
}

func TestLogger_JoinedErrorChain(t *testing.T) {
	l, buf := newJSON(t, Options{})
	l.Error(context.Background(), errors.Join(errors.New("port"), errors.New("bucket")), "invalid config")

	chain, _ := lines(t, buf)[0]["error_chain"].([]any)
	if len(chain) != 3 || chain[1] != "port" || chain[2] != "bucket" {
		t.Errorf("error_chain = %v", chain)
	}
}

func TestLogger_TraceIDs(t *testing.T) {
	l, buf := newJSON(t, Options{})
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.Info(ctx, "traced")
	got := lines(t, buf)[0]
	if got["trace_id"] != sc.TraceID().String() || got["span_id"] != sc.SpanID().String() {
		t.Errorf("trace fields = %v / %v", got["trace_id"], got["span_id"])
	}
	if _, ok := got["stack"]; ok {
		t.Error("info line carries a stack")
	}
}

func TestContext(t *testing.T) {
	if _, ok := FromContext(context.Background()).(nopLogger); !ok {
		t.Error("empty context should yield the nop logger")
	}

	l, _ := newJSON(t, Options{})
	ctx := WithContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("logger not round-tripped through context")
	}
}

func TestNop(t *testing.T) {
	n := Nop()
	n.With("k", "v").Error(context.Background(), errors.New("x"), "ignored")
	if err := n.Sync(); err != nil {
		t.Fatal(err)
	}
}
