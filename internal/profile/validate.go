package profile

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// ValidationOptions controls which checks Validate performs.
type ValidationOptions struct {
	// StrictLinks makes unsafe links and a malformed contact email
	// validation errors. When false they are left for the renderer, which
	// drops them and reports a security event.
	StrictLinks bool

	// BaseURL resolves relative links such as the resume path.
	// Nil uses DefaultBaseURL.
	BaseURL *url.URL

	// MinSkills rejects profiles with fewer skills in total. 0 disables.
	MinSkills int
}

// DefaultBaseURL stands in for the site origin when checking relative links.
var DefaultBaseURL = &url.URL{Scheme: "https", Host: "localhost", Path: "/"}

// Validate checks p and returns every problem found, joined.
func Validate(p *Profile, opts ValidationOptions) error {
	if p == nil {
		return xerrors.New("validate: profile is nil")
	}
	base := opts.BaseURL
	if base == nil {
		base = DefaultBaseURL
	}

	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, xerrors.New("validate: name is required"))
	}
	if strings.TrimSpace(p.Tagline) == "" {
		errs = append(errs, xerrors.New("validate: tagline is required"))
	}

	total := 0
	seenGroups := make(map[string]bool)
	for gi, g := range p.Skills {
		if strings.TrimSpace(g.Category) == "" {
			errs = append(errs, xerrors.Newf("validate: skills[%d] has no category", gi))
		} else if seenGroups[g.Category] {
			errs = append(errs, xerrors.Newf("validate: duplicate skill category %q", g.Category))
		}
		seenGroups[g.Category] = true

		seen := make(map[string]bool)
		for si, s := range g.Items {
			total++
			if strings.TrimSpace(s.Name) == "" {
				errs = append(errs, xerrors.Newf("validate: skills[%d].items[%d] has no name", gi, si))
				continue
			}
			if seen[s.Name] {
				errs = append(errs, xerrors.Newf("validate: duplicate skill %q in %q", s.Name, g.Category))
			}
			seen[s.Name] = true
			if s.Percent < 0 || s.Percent > 100 {
				errs = append(errs, xerrors.Newf("validate: skill %q has pct %d, want 0..100", s.Name, s.Percent))
			}
		}
	}
	if opts.MinSkills > 0 && total < opts.MinSkills {
		errs = append(errs, xerrors.Newf("validate: profile has %d skills, minimum is %d", total, opts.MinSkills))
	}

	titles := make(map[string]bool)
	for i, pr := range p.Projects {
		if strings.TrimSpace(pr.Title) == "" {
			errs = append(errs, xerrors.Newf("validate: projects[%d] has no title", i))
			continue
		}
		if titles[pr.Title] {
			errs = append(errs, xerrors.Newf("validate: duplicate project title %q", pr.Title))
		}
		titles[pr.Title] = true
	}

	if opts.StrictLinks {
		for _, l := range Links(p) {
			if !guard.IsSafeURLFrom(base, l.URL) {
				errs = append(errs, xerrors.Newf("validate: %s link %q is not an http(s) URL", l.Field, l.URL))
			}
		}
		if p.Contact.Email != "" && !guard.IsValidEmail(p.Contact.Email) {
			errs = append(errs, xerrors.Newf("validate: contact email %q is not valid", p.Contact.Email))
		}
	}

	return errors.Join(errs...)
}

// Link is an outbound link found in a profile.
type Link struct {
	Field string
	URL   string
}

// Links lists every non-empty link in p.
func Links(p *Profile) []Link {
	var out []Link
	add := func(field, u string) {
		if u != "" {
			out = append(out, Link{Field: field, URL: u})
		}
	}
	add("resume", p.Resume)
	add("contact.github", p.Contact.GitHub)
	add("contact.linkedin", p.Contact.LinkedIn)
	for i, pr := range p.Projects {
		add(fmt.Sprintf("projects[%d].source", i), pr.Source)
		add(fmt.Sprintf("projects[%d].demo", i), pr.Demo)
	}
	return out
}
