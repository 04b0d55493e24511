package site

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/profile"
)

type link struct {
	Href  string
	Label string
}

type projectView struct {
	Title       string
	Description string
	Tags        []string
	Links       []link
}

// view is a profile with every link already vetted.
type view struct {
	Name     string
	Greeting string
	Tagline  string
	Summary  string
	Resume   *link

	About  []string
	Facts  []profile.Fact
	Skills []profile.SkillGroup

	Projects []projectView

	Blurb  string
	Mail   *link
	Social []link
}

func buildView(ctx context.Context, p *profile.Profile, base *url.URL, events *guard.Events) view {
	// vet returns a link only when guard accepts raw.
	vet := func(field, raw, label string) (link, bool) {
		if raw == "" {
			return link{}, false
		}
		if !guard.IsSafeURLFrom(base, raw) {
			events.Record(ctx, guard.EventUnsafeLink, map[string]any{"field": field})
			return link{}, false
		}
		return link{Href: raw, Label: label}, true
	}

	v := view{
		Name:     p.Name,
		Greeting: p.Greeting,
		Tagline:  p.Tagline,
		Summary:  p.Summary,
		About:    p.About,
		Facts:    p.Facts,
		Skills:   p.Skills,
		Blurb:    p.Contact.Blurb,
	}

	if l, ok := vet("resume", p.Resume, "Resume"); ok {
		v.Resume = &l
	}

	for i, pr := range p.Projects {
		pv := projectView{Title: pr.Title, Description: pr.Description, Tags: pr.Tags}
		if l, ok := vet(fmt.Sprintf("projects[%d].source", i), pr.Source, "Source"); ok {
			pv.Links = append(pv.Links, l)
		}
		if l, ok := vet(fmt.Sprintf("projects[%d].demo", i), pr.Demo, "Demo"); ok {
			pv.Links = append(pv.Links, l)
		}
		v.Projects = append(v.Projects, pv)
	}

	if email := p.Contact.Email; email != "" {
		if guard.IsValidEmail(email) {
			v.Mail = &link{Href: "mailto:" + url.PathEscape(email), Label: email}
		} else {
			events.Record(ctx, guard.EventInvalidEmail, map[string]any{"field": "contact.email"})
		}
	}
	if l, ok := vet("contact.github", p.Contact.GitHub, "GitHub"); ok {
		v.Social = append(v.Social, l)
	}
	if l, ok := vet("contact.linkedin", p.Contact.LinkedIn, "LinkedIn"); ok {
		v.Social = append(v.Social, l)
	}
	return v
}

// hasSection reports whether the page will carry the section anchor.
func (v view) hasSection(id string) bool {
	switch id {
	case "about":
		return len(v.About) > 0 || len(v.Facts) > 0
	case "skills":
		return len(v.Skills) > 0
	case "projects":
		return len(v.Projects) > 0
	case "contact":
		return true
	}
	return false
}
