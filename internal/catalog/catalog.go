package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terra-clan/explorers-hub/internal/models"
)

// Catalog validation errors
var (
	ErrDuplicateID       = errors.New("duplicate project id")
	ErrMissingID         = errors.New("project id is required")
	ErrMissingTitle      = errors.New("project title is required")
	ErrInvalidDifficulty = errors.New("invalid project difficulty")
)

// Catalog is an immutable table of projects grouped by difficulty tier.
// Lookups return copies, so it is safe for concurrent use.
type Catalog struct {
	projects []*models.Project
	byID     map[string]*models.Project
	byTier   map[models.Difficulty][]*models.Project
}

// New builds a catalog from projects in declaration order.
// Ids must be unique across the whole catalog.
func New(projects []*models.Project) (*Catalog, error) {
	c := &Catalog{
		projects: make([]*models.Project, 0, len(projects)),
		byID:     make(map[string]*models.Project, len(projects)),
		byTier:   make(map[models.Difficulty][]*models.Project),
	}

	for i, p := range projects {
		if p == nil || strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("project #%d: %w", i, ErrMissingID)
		}
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("project %q: %w", p.ID, ErrMissingTitle)
		}
		if !p.Difficulty.Valid() {
			return nil, fmt.Errorf("project %q: %w: %q", p.ID, ErrInvalidDifficulty, p.Difficulty)
		}
		if _, exists := c.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		p = p.Clone()

		c.projects = append(c.projects, p)
		c.byID[p.ID] = p
		c.byTier[p.Difficulty] = append(c.byTier[p.Difficulty], p)
	}

	return c, nil
}

// Get returns a copy of the project with the given id, or nil if there is none
func (c *Catalog) Get(id string) *models.Project {
	return c.byID[id].Clone()
}

// ListByTier returns the projects of a tier in declaration order.
// An unknown tier yields an empty slice.
func (c *Catalog) ListByTier(tier models.Difficulty) []*models.Project {
	return cloneAll(c.byTier[tier])
}

// Tiers returns the tiers in display order
func (c *Catalog) Tiers() []models.Difficulty {
	result := make([]models.Difficulty, len(models.Tiers))
	copy(result, models.Tiers)
	return result
}

// TierSummaries returns every tier with its project count, in display order
func (c *Catalog) TierSummaries() []models.TierSummary {
	result := make([]models.TierSummary, 0, len(models.Tiers))
	for _, t := range models.Tiers {
		result = append(result, models.TierSummary{
			ID:            t,
			Title:         t.Title(),
			ProjectsCount: len(c.byTier[t]),
		})
	}
	return result
}

// List returns all projects in declaration order
func (c *Catalog) List() []*models.Project {
	return cloneAll(c.projects)
}

// Len returns the number of projects in the catalog
func (c *Catalog) Len() int {
	return len(c.projects)
}

// Search filters projects by a case-insensitive substring of title or description.
// An empty tier searches every tier; an empty query matches everything.
func (c *Catalog) Search(tier models.Difficulty, query string) []*models.Project {
	var src []*models.Project
	if tier == "" {
		src = c.projects
	} else {
		src = c.byTier[tier]
	}

	q := strings.ToLower(strings.TrimSpace(query))
	result := make([]*models.Project, 0, len(src))
	for _, p := range src {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			result = append(result, p.Clone())
		}
	}
	return result
}

func cloneAll(src []*models.Project) []*models.Project {
	result := make([]*models.Project, len(src))
	for i, p := range src {
		result[i] = p.Clone()
	}
	return result
}
