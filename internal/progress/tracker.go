package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/terra-clan/explorers-hub/internal/catalog"
	"github.com/terra-clan/explorers-hub/internal/models"
	"github.com/terra-clan/explorers-hub/internal/storage"
)

// Tracker owns the completion map of every project and derives progress
// aggregates from it. The whole map is persisted under a single store key.
//
// Mutations are serialized by the tracker; the last writer wins on the full map.
type Tracker struct {
	mu          sync.RWMutex
	catalog     *catalog.Catalog
	store       storage.Store
	key         string
	completions map[string]bool

	listenersMu sync.RWMutex
	listeners   []func(models.Summary)
}

// NewTracker creates a tracker and loads the persisted completion map
func NewTracker(ctx context.Context, cat *catalog.Catalog, store storage.Store, key string) (*Tracker, error) {
	t := &Tracker{
		catalog:     cat,
		store:       store,
		key:         key,
		completions: make(map[string]bool),
	}

	completions, err := t.readMap(ctx)
	if err != nil {
		return nil, err
	}
	t.completions = completions

	slog.Info("completion map loaded", "key", key, "entries", len(completions))
	return t, nil
}

// OnChange registers fn to receive the new summary after every change.
// fn runs while the tracker is locked, so listeners see summaries in mutation
// order; it must not block or call back into the tracker.
func (t *Tracker) OnChange(fn func(models.Summary)) {
	t.listenersMu.Lock()
	defer t.listenersMu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// IsCompleted reports whether id is marked completed.
// Ids unknown to the store or the catalog are simply not completed.
func (t *Tracker) IsCompleted(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completions[id]
}

// Toggle flips the completion flag of id, persists the full map and
// returns the new state. The in-memory map is unchanged if the write fails.
func (t *Tracker) Toggle(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()

	current, err := t.readMap(ctx)
	if err != nil {
		t.mu.Unlock()
		return false, err
	}

	completed := !current[id]
	current[id] = completed

	if err := t.writeMap(ctx, current); err != nil {
		t.mu.Unlock()
		return false, err
	}
	t.completions = current
	t.notify(t.summaryLocked())
	t.mu.Unlock()

	slog.Info("project completion toggled", "id", id, "completed", completed)
	return completed, nil
}

// Reset removes the persisted map so nothing is completed
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	if err := t.store.Delete(ctx, t.key); err != nil {
		t.mu.Unlock()
		return fmt.Errorf("failed to clear completion map: %w", err)
	}
	t.completions = make(map[string]bool)
	t.notify(t.summaryLocked())
	t.mu.Unlock()

	slog.Info("completion map cleared", "key", t.key)
	return nil
}

// Reload replaces the in-memory map with the persisted one.
// It reports whether anything changed.
func (t *Tracker) Reload(ctx context.Context) (bool, error) {
	t.mu.Lock()
	current, err := t.readMap(ctx)
	if err != nil {
		t.mu.Unlock()
		return false, err
	}
	if maps.Equal(current, t.completions) {
		t.mu.Unlock()
		return false, nil
	}
	t.completions = current
	t.notify(t.summaryLocked())
	t.mu.Unlock()

	slog.Debug("completion map reloaded", "entries", len(current))
	return true, nil
}

// Completions returns a copy of the raw completion map, stale ids included
func (t *Tracker) Completions() map[string]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.completions)
}

// TierProgress counts completed projects of a tier.
// Only catalog projects are counted, never map keys.
func (t *Tracker) TierProgress(tier models.Difficulty) models.TierProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tierProgressLocked(tier)
}

// CompletedCount returns how many catalog projects are completed
func (t *Tracker) CompletedCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completedCountLocked()
}

// LevelStanding reports the distance from level to the next one
func (t *Tracker) LevelStanding(completed int, level models.Level) (models.LevelStanding, error) {
	return Standing(completed, level)
}

// Summary returns the global progress aggregate
func (t *Tracker) Summary() models.Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.summaryLocked()
}

func (t *Tracker) tierProgressLocked(tier models.Difficulty) models.TierProgress {
	projects := t.catalog.ListByTier(tier)
	completed := 0
	for _, p := range projects {
		if t.completions[p.ID] {
			completed++
		}
	}
	return models.TierProgress{
		Tier:           tier,
		CompletedCount: completed,
		TotalCount:     len(projects),
		Percentage:     percentage(completed, len(projects)),
	}
}

func (t *Tracker) completedCountLocked() int {
	completed := 0
	for _, p := range t.catalog.List() {
		if t.completions[p.ID] {
			completed++
		}
	}
	return completed
}

func (t *Tracker) summaryLocked() models.Summary {
	completed := t.completedCountLocked()
	total := t.catalog.Len()
	level := LevelFor(completed)

	// LevelFor only yields levels from the table.
	standing, _ := Standing(completed, level)

	tiers := make([]models.TierProgress, 0, len(models.Tiers))
	for _, tier := range t.catalog.Tiers() {
		tiers = append(tiers, t.tierProgressLocked(tier))
	}

	return models.Summary{
		CompletedCount: completed,
		TotalCount:     total,
		Percentage:     percentage(completed, total),
		Level:          level,
		Standing:       standing,
		Tiers:          tiers,
	}
}

// notify must be called with t.mu held
func (t *Tracker) notify(summary models.Summary) {
	t.listenersMu.RLock()
	defer t.listenersMu.RUnlock()
	for _, fn := range t.listeners {
		fn(summary)
	}
}

// readMap loads the persisted map. Missing or malformed content is an empty map.
func (t *Tracker) readMap(ctx context.Context) (map[string]bool, error) {
	data, err := t.store.Get(ctx, t.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion map: %w", err)
	}
	return decodeCompletions(t.key, data), nil
}

func (t *Tracker) writeMap(ctx context.Context, completions map[string]bool) error {
	data, err := json.Marshal(completions)
	if err != nil {
		return fmt.Errorf("failed to marshal completion map: %w", err)
	}
	if err := t.store.Set(ctx, t.key, data); err != nil {
		return fmt.Errorf("failed to write completion map: %w", err)
	}
	return nil
}

func decodeCompletions(key string, data []byte) map[string]bool {
	completions := make(map[string]bool)
	if data == nil {
		return completions
	}

	var decoded map[string]bool
	if err := json.Unmarshal(data, &decoded); err != nil {
		slog.Warn("ignoring corrupt completion map", "key", key, "error", err)
		return completions
	}
	for id, done := range decoded {
		completions[id] = done
	}
	return completions
}

func percentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
