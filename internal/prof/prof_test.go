package prof

import (
	"context"
	"strings"
	"testing"

	"github.com/pranavnadakkal/portfolio/internal/log"
)

func TestStart_Disabled(t *testing.T) {
	var states []bool
	ctx := log.WithContext(context.Background(), log.Nop())

	stop, err := Start(ctx, Options{
		Enabled:       false,
		ServerAddress: "javascript:alert(1)",
		OnStateChange: func(a bool) { states = append(states, a) },
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	stop()
	stop()

	if len(states) != 1 || states[0] {
		t.Fatalf("states = %v, want [false]", states)
	}
}

func TestStart_InvalidOptions(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want string
	}{
		{"empty address", Options{Enabled: true, AppName: "portfolio"}, "server address"},
		{"ftp address", Options{Enabled: true, AppName: "portfolio", ServerAddress: "ftp://pyro:4040"}, "server address"},
		{"relative address", Options{Enabled: true, AppName: "portfolio", ServerAddress: "pyro:4040"}, "server address"},
		{"missing app", Options{Enabled: true, ServerAddress: "http://pyro:4040"}, "app name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			active := true
			tc.opts.OnStateChange = func(a bool) { active = a }

			stop, err := Start(context.Background(), tc.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want mention of %q", err, tc.want)
			}
			if stop == nil {
				t.Fatal("stop must be non-nil on error")
			}
			stop()
			if active {
				t.Error("state reported active after failure")
			}
		})
	}
}

func TestProfileTypes(t *testing.T) {
	base := len(Options{}.profileTypes())
	if got := len(Options{ProfileMutexFraction: 5}.profileTypes()); got != base+2 {
		t.Errorf("with mutex = %d, want %d", got, base+2)
	}
	if got := len(Options{ProfileMutexFraction: 5, BlockProfileRate: 5}.profileTypes()); got != base+4 {
		t.Errorf("with mutex+block = %d, want %d", got, base+4)
	}
}
