package webassets

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static fallback seed/profile.yaml
var embedded embed.FS

// StaticFS holds the stylesheet and scripts served under /static/.
func StaticFS() fs.FS {
	return sub("static")
}

// FallbackFS holds the maintenance and not-found pages.
func FallbackFS() fs.FS {
	return sub("fallback")
}

// SeedProfile returns the profile document compiled into the binary.
func SeedProfile() []byte {
	data, err := embedded.ReadFile("seed/profile.yaml")
	if err != nil {
		panic(fmt.Errorf("webassets: read seed profile: %w", err))
	}
	return data
}

func sub(dir string) fs.FS {
	s, err := fs.Sub(embedded, dir)
	if err != nil {
		panic(fmt.Errorf("webassets: %s subfs: %w", dir, err))
	}
	return s
}
