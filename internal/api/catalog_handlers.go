package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/explorers-hub/internal/models"
)

// Catalog handlers

type tierView struct {
	models.TierSummary
	Progress models.TierProgress `json:"progress"`
}

func (s *Server) handleListTiers(w http.ResponseWriter, r *http.Request) {
	summaries := s.catalog.TierSummaries()
	tiers := make([]tierView, 0, len(summaries))
	for _, t := range summaries {
		tiers = append(tiers, tierView{
			TierSummary: t,
			Progress:    s.tracker.TierProgress(t.ID),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tiers": tiers,
		"total": len(tiers),
	})
}

// handleListTierProjects lists a tier's projects; an unknown tier is simply empty
func (s *Server) handleListTierProjects(w http.ResponseWriter, r *http.Request) {
	tier := models.Difficulty(chi.URLParam(r, "tier"))
	projects := s.projectViews(s.catalog.Search(tier, r.URL.Query().Get("q")))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"total":    len(projects),
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects := s.projectViews(s.catalog.Search("", r.URL.Query().Get("q")))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"total":    len(projects),
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	project := s.catalog.Get(id)
	if project == nil {
		respondError(w, http.StatusNotFound, "not_found", "project not found")
		return
	}
	respondJSON(w, http.StatusOK, models.ProjectView{
		Project:   project,
		Completed: s.tracker.IsCompleted(id),
	})
}

func (s *Server) projectViews(projects []*models.Project) []models.ProjectView {
	views := make([]models.ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, models.ProjectView{
			Project:   p,
			Completed: s.tracker.IsCompleted(p.ID),
		})
	}
	return views
}
