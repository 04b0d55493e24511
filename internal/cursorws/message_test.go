package cursorws

import (
	"errors"
	"testing"

	"github.com/pranavnadakkal/portfolio/internal/pointer"
)

// message.go - decode

func TestDecode(t *testing.T) {
	tests := []struct {
		in      string
		wantSig pointer.Signal
		wantX   any
	}{
		{`{"type":"move","x":10,"y":20}`, pointer.SignalPointerMove, float64(10)},
		{`{"type":"touch","x":"15","y":1}`, pointer.SignalTouchMove, "15"},
		{`{"type":"enter"}`, pointer.SignalPointerEnter, nil},
		{`{"type":"leave","extra":true}`, pointer.SignalPointerLeave, nil},
	}
	for _, tt := range tests {
		ev, err := decode([]byte(tt.in))
		if err != nil {
			t.Errorf("decode(%s): %v", tt.in, err)
			continue
		}
		if ev.Signal != tt.wantSig || ev.X != tt.wantX {
			t.Errorf("decode(%s) = %+v", tt.in, ev)
		}
	}
}

func TestDecode_Rejects(t *testing.T) {
	if _, err := decode([]byte(`{"type":"click"}`)); !errors.Is(err, errUnknownType) {
		t.Errorf("unknown type err = %v", err)
	}
	if _, err := decode([]byte(`{}`)); !errors.Is(err, errUnknownType) {
		t.Errorf("missing type err = %v", err)
	}
	for _, in := range []string{`not json`, `[1,2]`, `{"type":5}`} {
		if _, err := decode([]byte(in)); err == nil {
			t.Errorf("decode(%s) succeeded", in)
		}
	}
}

func TestEncodeFrame(t *testing.T) {
	f := pointer.Frame{
		Target:   pointer.Position{X: 100, Y: 100},
		Follower: pointer.Position{X: 15, Y: 30},
		Active:   true,
	}
	got := encodeFrame(f)
	if got != (outbound{X: 15, Y: 30, Active: true}) {
		t.Fatalf("encodeFrame = %+v", got)
	}
}
