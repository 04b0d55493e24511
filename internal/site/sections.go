package site

import "slices"

// Sections are the in-page anchors navigation may target, in page order.
var Sections = []string{"about", "skills", "projects", "contact"}

// IsSection reports whether id is an allow-listed section anchor.
func IsSection(id string) bool {
	return slices.Contains(Sections, id)
}

var sectionTitles = map[string]string{
	"about":    "About",
	"skills":   "Skills",
	"projects": "Projects",
	"contact":  "Contact",
}
