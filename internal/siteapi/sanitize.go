package siteapi

import (
	"net/url"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/profile"
)

// Sanitize returns a copy of p that is safe to insert into a page as markup:
// text is escaped, links guard rejects are cleared and so is an invalid email.
func Sanitize(p *profile.Profile, base *url.URL) *profile.Profile {
	if p == nil {
		return nil
	}
	out := p.Clone()

	text := guard.SanitizeText
	link := func(u string) string {
		if u == "" || !guard.IsSafeURLFrom(base, u) {
			return ""
		}
		return text(u)
	}

	out.Name = text(out.Name)
	out.Greeting = text(out.Greeting)
	out.Tagline = text(out.Tagline)
	out.Summary = text(out.Summary)
	out.Resume = link(out.Resume)
	out.ResumeFilename = text(out.ResumeFilename)

	for i := range out.About {
		out.About[i] = text(out.About[i])
	}
	for i := range out.Facts {
		out.Facts[i].Label = text(out.Facts[i].Label)
		out.Facts[i].Value = text(out.Facts[i].Value)
	}
	for i := range out.Skills {
		g := &out.Skills[i]
		g.Category = text(g.Category)
		for j := range g.Items {
			g.Items[j].Name = text(g.Items[j].Name)
			g.Items[j].Percent = min(max(g.Items[j].Percent, 0), 100)
		}
	}
	for i := range out.Projects {
		pr := &out.Projects[i]
		pr.Title = text(pr.Title)
		pr.Description = text(pr.Description)
		for j := range pr.Tags {
			pr.Tags[j] = text(pr.Tags[j])
		}
		pr.Source = link(pr.Source)
		pr.Demo = link(pr.Demo)
	}

	out.Contact.Blurb = text(out.Contact.Blurb)
	if guard.IsValidEmail(out.Contact.Email) {
		out.Contact.Email = text(out.Contact.Email)
	} else {
		out.Contact.Email = ""
	}
	out.Contact.GitHub = link(out.Contact.GitHub)
	out.Contact.LinkedIn = link(out.Contact.LinkedIn)
	return out
}
