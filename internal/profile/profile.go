package profile

import "slices"

// Profile is the content of the portfolio page.
type Profile struct {
	Name     string `yaml:"name" json:"name"`
	Greeting string `yaml:"greeting,omitempty" json:"greeting,omitempty"`
	Tagline  string `yaml:"tagline" json:"tagline"`
	Summary  string `yaml:"summary,omitempty" json:"summary,omitempty"`

	// Resume is a link to a downloadable resume, usually site-relative.
	Resume         string `yaml:"resume,omitempty" json:"resume,omitempty"`
	ResumeFilename string `yaml:"resume_filename,omitempty" json:"resume_filename,omitempty"`

	About    []string     `yaml:"about,omitempty" json:"about,omitempty"`
	Facts    []Fact       `yaml:"facts,omitempty" json:"facts,omitempty"`
	Skills   []SkillGroup `yaml:"skills,omitempty" json:"skills,omitempty"`
	Projects []Project    `yaml:"projects,omitempty" json:"projects,omitempty"`
	Contact  Contact      `yaml:"contact" json:"contact"`
}

// Fact is a labelled line in the quick facts box.
type Fact struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// SkillGroup is one category of skills.
type SkillGroup struct {
	Category string  `yaml:"category" json:"category"`
	Items    []Skill `yaml:"items" json:"items"`
}

// Skill is a named proficiency in percent, 0 to 100.
type Skill struct {
	Name    string `yaml:"name" json:"name"`
	Percent int    `yaml:"pct" json:"pct"`
}

// Project is a project card.
type Project struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Source      string   `yaml:"source,omitempty" json:"source,omitempty"`
	Demo        string   `yaml:"demo,omitempty" json:"demo,omitempty"`
}

// Contact holds the outbound contact links.
type Contact struct {
	Blurb    string `yaml:"blurb,omitempty" json:"blurb,omitempty"`
	Email    string `yaml:"email" json:"email"`
	GitHub   string `yaml:"github,omitempty" json:"github,omitempty"`
	LinkedIn string `yaml:"linkedin,omitempty" json:"linkedin,omitempty"`
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	cp.About = slices.Clone(p.About)
	cp.Facts = slices.Clone(p.Facts)
	if p.Skills != nil {
		cp.Skills = make([]SkillGroup, len(p.Skills))
		for i, g := range p.Skills {
			cp.Skills[i] = SkillGroup{Category: g.Category, Items: slices.Clone(g.Items)}
		}
	}
	if p.Projects != nil {
		cp.Projects = make([]Project, len(p.Projects))
		for i, pr := range p.Projects {
			pr.Tags = slices.Clone(pr.Tags)
			cp.Projects[i] = pr
		}
	}
	return &cp
}
