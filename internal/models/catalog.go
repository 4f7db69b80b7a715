package models

// Difficulty is a project's difficulty tier
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Tiers lists every difficulty tier in display order
var Tiers = []Difficulty{Beginner, Intermediate, Advanced}

// Valid reports whether d is one of the known tiers
func (d Difficulty) Valid() bool {
	for _, t := range Tiers {
		if t == d {
			return true
		}
	}
	return false
}

// Title returns the display label for a tier ("Beginner", "Intermediate", ...)
func (d Difficulty) Title() string {
	switch d {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	}
	return string(d)
}

// Project is a single tutorial project in the catalog
type Project struct {
	ID          string         `json:"id"` // "todo-app"
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Difficulty  Difficulty     `json:"difficulty"`
	Duration    string         `json:"duration"` // free text, e.g. "2-3 hours"
	Detail      *ProjectDetail `json:"detail,omitempty"`
}

// Clone returns a deep copy of p
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	if p.Detail != nil {
		d := *p.Detail
		d.Prerequisites = cloneStrings(p.Detail.Prerequisites)
		d.TechStack = cloneStrings(p.Detail.TechStack)
		if p.Detail.Steps != nil {
			d.Steps = make([]Step, len(p.Detail.Steps))
			for i, step := range p.Detail.Steps {
				if step.Code != nil {
					code := *step.Code
					step.Code = &code
				}
				step.Pitfalls = cloneStrings(step.Pitfalls)
				d.Steps[i] = step
			}
		}
		c.Detail = &d
	}
	return &c
}

// cloneStrings keeps nil as nil so optional fields stay absent
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

// ProjectDetail is the extended content shown on a project's detail view
type ProjectDetail struct {
	Prerequisites []string `json:"prerequisites"`
	TechStack     []string `json:"techStack"`
	Steps         []Step   `json:"steps"`
	RepoLink      string   `json:"repoLink,omitempty"`
	DemoLink      string   `json:"demoLink,omitempty"`
}

// Step is one entry of a project's step-by-step guide.
// Code and Pitfalls are nil when the step has none.
type Step struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        *string  `json:"code,omitempty"`
	Pitfalls    []string `json:"pitfalls,omitempty"`
}

// HasCode reports whether the step carries a code sample
func (s Step) HasCode() bool {
	return s.Code != nil
}

// HasPitfalls reports whether the step lists common pitfalls
func (s Step) HasPitfalls() bool {
	return s.Pitfalls != nil
}

// TierSummary describes a tier for listing views
type TierSummary struct {
	ID            Difficulty `json:"id"`
	Title         string     `json:"title"`
	ProjectsCount int        `json:"projectsCount"`
}

// ProjectView is a project together with its completion flag
type ProjectView struct {
	*Project
	Completed bool `json:"completed"`
}
