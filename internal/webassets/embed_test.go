package webassets

import (
	"io/fs"
	"strings"
	"testing"
)

func TestStaticFS_Files(t *testing.T) {
	fsys := StaticFS()
	for _, name := range []string{"site.css", "cursor.js"} {
		info, err := fs.Stat(fsys, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}

func TestStaticFS_NoEscape(t *testing.T) {
	if _, err := fs.Stat(StaticFS(), "../seed/profile.yaml"); err == nil {
		t.Fatal("static fs exposes files outside static/")
	}
}

func TestFallbackFS_Pages(t *testing.T) {
	fsys := FallbackFS()
	for _, name := range []string{"maintenance.html", "404.html"} {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !strings.Contains(strings.ToLower(string(data)), "<!doctype html>") {
			t.Errorf("%s does not look like html", name)
		}
	}
}

func TestSeedProfile(t *testing.T) {
	data := SeedProfile()
	if !strings.Contains(string(data), "name: Pranav Nadakkal") {
		t.Fatal("seed profile missing name")
	}
}
