// Package site renders the portfolio page from the active profile snapshot.
//
// Page markup lives in components.templ; components_templ.go is generated
// from it with templ and checked in. Profile text is escaped by templ, and
// links are only emitted when guard accepts them. Rejected links are reported
// to the security event sink and left out of the page.
//
// Rendered pages are cached per profile hash, so a page is rendered at most
// once per published profile.
package site
