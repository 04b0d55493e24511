package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pranavnadakkal/portfolio/internal/cryptoutil"
	"github.com/pranavnadakkal/portfolio/internal/webassets"
)

// source.go

func TestLoadSeed(t *testing.T) {
	snap, err := LoadSeed(webassets.SeedProfile())
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if snap.Meta.Source != SourceSeed {
		t.Errorf("Source = %q", snap.Meta.Source)
	}
	if snap.Meta.SHA256 != cryptoutil.SHA256Hex(webassets.SeedProfile()) {
		t.Error("SHA256 does not match document")
	}
	if len(snap.Meta.Version) != 12 {
		t.Errorf("Version = %q, want 12 char hash prefix", snap.Meta.Version)
	}
}

func TestLoadSeed_Invalid(t *testing.T) {
	if _, err := LoadSeed([]byte("name: x\n")); err == nil {
		t.Fatal("seed without tagline accepted")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	snap, err := FileSource{Path: path}.Load(t.Context())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Profile.Name != "Ada" || snap.Meta.Source != SourceFile || snap.Meta.Location != path {
		t.Fatalf("snapshot = %+v", snap.Meta)
	}
}

func TestFileSource_Missing(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.yaml")}.Load(t.Context())
	if err == nil {
		t.Fatal("missing file loaded")
	}
}

func TestFileSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := (FileSource{Path: "whatever"}).Load(ctx); err == nil {
		t.Fatal("cancelled context ignored")
	}
}
