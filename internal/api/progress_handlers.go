package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/explorers-hub/internal/models"
	"github.com/terra-clan/explorers-hub/internal/progress"
)

// Completion handlers

func (s *Server) handleGetCompletion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.catalog.Get(id) == nil {
		respondError(w, http.StatusNotFound, "not_found", "project not found")
		return
	}
	respondJSON(w, http.StatusOK, models.Completion{
		ID:        id,
		Completed: s.tracker.IsCompleted(id),
	})
}

func (s *Server) handleToggleCompletion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.catalog.Get(id) == nil {
		respondError(w, http.StatusNotFound, "not_found", "project not found")
		return
	}

	completed, err := s.tracker.Toggle(r.Context(), id)
	if err != nil {
		slog.Error("failed to toggle completion", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to toggle completion")
		return
	}

	respondJSON(w, http.StatusOK, models.Completion{
		ID:        id,
		Completed: completed,
	})
}

// Progress handlers

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.tracker.Summary())
}

func (s *Server) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Reset(r.Context()); err != nil {
		slog.Error("failed to reset progress", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to reset progress")
		return
	}
	respondJSON(w, http.StatusOK, s.tracker.Summary())
}

// handleGetTierProgress reports a tier aggregate; an unknown tier has zero projects
func (s *Server) handleGetTierProgress(w http.ResponseWriter, r *http.Request) {
	tier := models.Difficulty(chi.URLParam(r, "tier"))
	respondJSON(w, http.StatusOK, s.tracker.TierProgress(tier))
}

// handleGetLevelStanding defaults completed to the current count and level
// to the level that count has reached
func (s *Server) handleGetLevelStanding(w http.ResponseWriter, r *http.Request) {
	completed := s.tracker.CompletedCount()
	if completedStr := r.URL.Query().Get("completed"); completedStr != "" {
		c, err := strconv.Atoi(completedStr)
		if err != nil || c < 0 {
			respondError(w, http.StatusBadRequest, "validation_error", "completed must be a non-negative integer")
			return
		}
		completed = c
	}

	level := progress.LevelFor(completed)
	if levelStr := r.URL.Query().Get("level"); levelStr != "" {
		l, err := progress.ParseLevel(levelStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unknown_level", err.Error())
			return
		}
		level = l
	}

	standing, err := s.tracker.LevelStanding(completed, level)
	if err != nil {
		if errors.Is(err, progress.ErrUnknownLevel) {
			respondError(w, http.StatusBadRequest, "unknown_level", err.Error())
			return
		}
		slog.Error("failed to compute level standing", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to compute level standing")
		return
	}

	respondJSON(w, http.StatusOK, standing)
}
