package sitehandler

import (
	"io/fs"
	"strings"

	"github.com/pranavnadakkal/portfolio/internal/pathutil"
)

// resolveAsset maps a URL path under prefix to a file in fsys.
// Directories, dotfiles and anything ambiguous do not resolve.
func resolveAsset(urlPath, prefix string, fsys fs.FS) (string, bool) {
	rest, ok := strings.CutPrefix(urlPath, prefix)
	if !ok || rest == "" {
		return "", false
	}
	if strings.ContainsAny(rest, "\x00\\") || strings.Contains(rest, "//") {
		return "", false
	}
	if pathutil.HasDotSegments(rest) || pathutil.HasHiddenSegment(rest) {
		return "", false
	}
	if !existsFile(fsys, rest) {
		return "", false
	}
	return rest, true
}

func existsFile(fsys fs.FS, name string) bool {
	if name == "" || !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
