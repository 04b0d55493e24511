package site

import (
	"strconv"

	"github.com/pranavnadakkal/portfolio/internal/profile"
)

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.906 generate -f components.templ

// navNumber labels nav entries "01.", "02.", ...
func navNumber(i int) string {
	return "0" + strconv.Itoa(i+1) + "."
}

// skillPercent clamps a skill level to 0..100.
func skillPercent(s profile.Skill) string {
	return strconv.Itoa(min(max(s.Percent, 0), 100))
}

// initials turns "Pranav Nadakkal" into "PN" for the nav brand.
func initials(name string) string {
	var out []rune
	start := true
	for _, r := range name {
		if r == ' ' {
			start = true
			continue
		}
		if start {
			out = append(out, r)
			start = false
		}
	}
	return string(out)
}
