package catalog

import (
	"testing"

	"github.com/terra-clan/explorers-hub/internal/models"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]*models.Project{
		{ID: "todo-app", Title: "Todo App", Description: "Learn state", Difficulty: models.Beginner},
		{ID: "shopping-cart", Title: "Shopping Cart", Description: "Context and reducers", Difficulty: models.Intermediate},
		{ID: "counter-app", Title: "Counter App", Description: "Events and STATE", Difficulty: models.Beginner},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestGet(t *testing.T) {
	c := testCatalog(t)

	if p := c.Get("counter-app"); p == nil || p.Title != "Counter App" {
		t.Errorf("unexpected project: %+v", p)
	}
	if p := c.Get("ghost-project"); p != nil {
		t.Errorf("expected nil for unknown id, got %+v", p)
	}
	if p := c.Get(""); p != nil {
		t.Errorf("expected nil for empty id, got %+v", p)
	}
}

func TestListByTier(t *testing.T) {
	c := testCatalog(t)

	got := c.ListByTier(models.Beginner)
	if len(got) != 2 || got[0].ID != "todo-app" || got[1].ID != "counter-app" {
		t.Fatalf("unexpected beginner projects: %+v", got)
	}

	if got := c.ListByTier(models.Advanced); len(got) != 0 {
		t.Errorf("expected no advanced projects, got %d", len(got))
	}

	unknown := c.ListByTier("legendary")
	if unknown == nil || len(unknown) != 0 {
		t.Errorf("expected empty non-nil slice for unknown tier, got %#v", unknown)
	}

	// Callers must not be able to reorder the catalog.
	got[0] = got[1]
	if c.ListByTier(models.Beginner)[0].ID != "todo-app" {
		t.Error("ListByTier leaked internal slice")
	}
}

func TestLookupsReturnCopies(t *testing.T) {
	code := "npm start"
	input := []*models.Project{{
		ID:         "todo-app",
		Title:      "Todo App",
		Difficulty: models.Beginner,
		Detail: &models.ProjectDetail{
			TechStack: []string{"React"},
			Steps: []models.Step{
				{Title: "Setup", Code: &code, Pitfalls: []string{"forgetting keys"}},
			},
		},
	}}
	c, err := New(input)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Neither the caller's input nor any returned value aliases the catalog.
	input[0].Title = "changed"
	*input[0].Detail.Steps[0].Code = "changed"

	got := c.Get("todo-app")
	got.Title = "changed"
	got.Detail.TechStack[0] = "changed"
	got.Detail.Steps[0].Pitfalls[0] = "changed"
	*got.Detail.Steps[0].Code = "changed"
	c.ListByTier(models.Beginner)[0].Detail.Steps[0].Title = "changed"
	c.List()[0].Duration = "changed"
	c.Search("", "todo")[0].Detail.Steps = nil

	p := c.Get("todo-app")
	if p.Title != "Todo App" || p.Duration != "" {
		t.Errorf("catalog project mutated: %+v", p)
	}
	if p.Detail.TechStack[0] != "React" || len(p.Detail.Steps) != 1 {
		t.Fatalf("catalog detail mutated: %+v", p.Detail)
	}
	step := p.Detail.Steps[0]
	if step.Title != "Setup" || *step.Code != "npm start" || step.Pitfalls[0] != "forgetting keys" {
		t.Errorf("catalog step mutated: %+v", step)
	}
}

func TestCloneKeepsOptionalFieldsAbsent(t *testing.T) {
	p := (&models.Project{
		ID:     "x",
		Detail: &models.ProjectDetail{Steps: []models.Step{{Title: "bare"}}},
	}).Clone()

	if step := p.Detail.Steps[0]; step.HasCode() || step.HasPitfalls() {
		t.Errorf("clone invented optional fields: %+v", step)
	}
	if p.Detail.Prerequisites != nil {
		t.Errorf("expected nil prerequisites, got %#v", p.Detail.Prerequisites)
	}
}

func TestTiers(t *testing.T) {
	c := testCatalog(t)

	want := []models.Difficulty{models.Beginner, models.Intermediate, models.Advanced}
	got := c.Tiers()
	if len(got) != len(want) {
		t.Fatalf("expected %d tiers, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tier %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	summaries := c.TierSummaries()
	if summaries[0].ProjectsCount != 2 || summaries[1].ProjectsCount != 1 || summaries[2].ProjectsCount != 0 {
		t.Errorf("unexpected tier counts: %+v", summaries)
	}
	if summaries[1].Title != "Intermediate" {
		t.Errorf("unexpected tier title: %s", summaries[1].Title)
	}
}

func TestSearch(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name  string
		tier  models.Difficulty
		query string
		want  []string
	}{
		{"empty query returns tier", models.Beginner, "", []string{"todo-app", "counter-app"}},
		{"title match", models.Beginner, "todo", []string{"todo-app"}},
		{"case-insensitive description", models.Beginner, "state", []string{"todo-app", "counter-app"}},
		{"all tiers", "", "cart", []string{"shopping-cart"}},
		{"no match", models.Beginner, "webrtc", []string{}},
		{"unknown tier", "legendary", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.tier, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %d results", tt.want, len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("result %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}
