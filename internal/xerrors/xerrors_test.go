package xerrors

import (
	"errors"
	"io/fs"
	"runtime"
	"strings"
	"testing"
)

func frameFunc(pc uintptr) string {
	fr, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	return fr.Function
}

func TestNew_RecordsCaller(t *testing.T) {
	err := New("boom")
	if err.Error() != "boom" {
		t.Fatalf("Error = %q", err.Error())
	}
	var s *stacked
	if !errors.As(err, &s) || len(s.StackPCs()) == 0 {
		t.Fatal("no stack recorded")
	}
	if fn := frameFunc(s.StackPCs()[0]); !strings.HasSuffix(fn, "TestNew_RecordsCaller") {
		t.Errorf("first frame = %q", fn)
	}
}

func TestNewf_HonoursW(t *testing.T) {
	err := Newf("open profile: %w", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("errors.Is lost the wrapped sentinel")
	}
	if err.Error() != "open profile: file does not exist" {
		t.Errorf("Error = %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil || Wrapf(nil, "x %d", 1) != nil {
		t.Fatal("wrapping nil must return nil")
	}

	err := Wrapf(fs.ErrPermission, "read %s", "seed.yaml")
	if err.Error() != "read seed.yaml: permission denied" {
		t.Errorf("Error = %q", err.Error())
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is failed through Wrapf")
	}
	w, ok := err.(*wrapped)
	if !ok {
		t.Fatalf("type = %T", err)
	}
	if fn := frameFunc(w.PC()); !strings.HasSuffix(fn, "TestWrap") {
		t.Errorf("pc func = %q", fn)
	}
}

func TestEnsureTrace(t *testing.T) {
	if EnsureTrace(nil) != nil {
		t.Fatal("EnsureTrace(nil) != nil")
	}

	plain := errors.New("plain")
	traced := EnsureTrace(plain)
	if traced == plain || !HasStack(traced) {
		t.Fatal("plain error was not given a stack")
	}

	// a stack anywhere in the chain is enough
	outer := Wrap(New("inner"), "outer")
	if EnsureTrace(outer) != outer {
		t.Error("EnsureTrace re-stacked an already traced error")
	}
}

func TestWithStack(t *testing.T) {
	if WithStack(nil) != nil {
		t.Fatal("WithStack(nil) != nil")
	}
	base := errors.New("base")
	err := WithStack(base)
	if !errors.Is(err, base) || err.Error() != "base" {
		t.Errorf("WithStack changed identity or message: %v", err)
	}
	if HasStack(base) {
		t.Error("HasStack true for plain error")
	}
}
