package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/terra-clan/explorers-hub/internal/catalog"
	"github.com/terra-clan/explorers-hub/internal/models"
	"github.com/terra-clan/explorers-hub/internal/storage"
)

const testKey = "explorers-hub:completion"

// countingStore wraps a Store and counts writes
type countingStore struct {
	storage.Store
	sets    int
	failSet error
	failGet error
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	return s.Store.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet != nil {
		return s.failSet
	}
	s.sets++
	return s.Store.Set(ctx, key, value)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]*models.Project{
		{ID: "todo-app", Title: "Todo App", Difficulty: models.Beginner},
		{ID: "counter-app", Title: "Counter App", Difficulty: models.Beginner},
		{ID: "weather-widget", Title: "Weather Widget", Difficulty: models.Beginner},
		{ID: "shopping-cart", Title: "Shopping Cart", Difficulty: models.Intermediate},
	})
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	return c
}

func newTracker(t *testing.T, seed string) (*Tracker, *countingStore) {
	t.Helper()
	store := &countingStore{Store: storage.NewMemoryStore()}
	if seed != "" {
		if err := store.Store.Set(context.Background(), testKey, []byte(seed)); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	tracker, err := NewTracker(context.Background(), testCatalog(t), store, testKey)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	return tracker, store
}

func TestEmptyMapTierProgress(t *testing.T) {
	tracker, _ := newTracker(t, "")

	got := tracker.TierProgress(models.Beginner)
	want := models.TierProgress{Tier: models.Beginner, CompletedCount: 0, TotalCount: 3, Percentage: 0}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestToggleUpdatesTierProgress(t *testing.T) {
	tracker, _ := newTracker(t, "")

	completed, err := tracker.Toggle(context.Background(), "todo-app")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !completed {
		t.Fatal("expected todo-app to be completed")
	}
	if !tracker.IsCompleted("todo-app") {
		t.Fatal("IsCompleted should report true after toggle")
	}

	got := tracker.TierProgress(models.Beginner)
	if got.CompletedCount != 1 || got.TotalCount != 3 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if math.Abs(got.Percentage-100.0/3) > 1e-9 {
		t.Fatalf("expected 33.33..%%, got %v", got.Percentage)
	}
}

func TestToggleTwiceRestoresStateWithTwoWrites(t *testing.T) {
	tracker, store := newTracker(t, "")
	ctx := context.Background()

	first, err := tracker.Toggle(ctx, "counter-app")
	if err != nil || !first {
		t.Fatalf("first toggle: got %v, %v", first, err)
	}
	second, err := tracker.Toggle(ctx, "counter-app")
	if err != nil || second {
		t.Fatalf("second toggle: got %v, %v", second, err)
	}

	if tracker.IsCompleted("counter-app") {
		t.Error("expected counter-app back to incomplete")
	}
	if store.sets != 2 {
		t.Errorf("expected 2 persisted writes, got %d", store.sets)
	}
}

func TestTogglePersistsFullMap(t *testing.T) {
	tracker, store := newTracker(t, `{"todo-app":true}`)
	ctx := context.Background()

	if _, err := tracker.Toggle(ctx, "counter-app"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	// A fresh tracker over the same store sees both flags.
	reloaded, err := NewTracker(ctx, testCatalog(t), store, testKey)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	if !reloaded.IsCompleted("todo-app") || !reloaded.IsCompleted("counter-app") {
		t.Fatalf("expected both flags persisted, got %v", reloaded.Completions())
	}
}

func TestToggleReadsStoreBeforeWriting(t *testing.T) {
	tracker, store := newTracker(t, "")
	ctx := context.Background()

	// Another writer completes a project behind the tracker's back.
	_ = store.Store.Set(ctx, testKey, []byte(`{"weather-widget":true}`))

	if _, err := tracker.Toggle(ctx, "todo-app"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !tracker.IsCompleted("weather-widget") {
		t.Error("toggle dropped a flag written by another writer")
	}
}

func TestToggleWriteFailureKeepsState(t *testing.T) {
	tracker, store := newTracker(t, "")
	store.failSet = errors.New("disk full")

	if _, err := tracker.Toggle(context.Background(), "todo-app"); err == nil {
		t.Fatal("expected error")
	}
	if tracker.IsCompleted("todo-app") {
		t.Error("failed write must not change in-memory state")
	}
}

func TestIsCompletedUnknownIDs(t *testing.T) {
	tracker, _ := newTracker(t, "")

	for _, id := range []string{"", "nope", "ghost-project", "TODO-APP"} {
		if tracker.IsCompleted(id) {
			t.Errorf("IsCompleted(%q) should be false", id)
		}
	}
}

func TestStaleEntriesAreHarmless(t *testing.T) {
	tracker, _ := newTracker(t, `{"ghost-project":true,"todo-app":true}`)

	if !tracker.IsCompleted("ghost-project") {
		t.Error("stale entry should still read as completed")
	}
	for _, tier := range models.Tiers {
		p := tracker.TierProgress(tier)
		if p.CompletedCount > p.TotalCount {
			t.Errorf("%s: completed %d exceeds total %d", tier, p.CompletedCount, p.TotalCount)
		}
	}
	if got := tracker.TierProgress(models.Beginner).CompletedCount; got != 1 {
		t.Errorf("expected 1 beginner completion, got %d", got)
	}
	if got := tracker.CompletedCount(); got != 1 {
		t.Errorf("expected global count 1, got %d", got)
	}
}

func TestCorruptPersistedStateIsEmpty(t *testing.T) {
	for _, seed := range []string{`not json`, `[1,2,3]`, `{"todo-app":"yes"}`, `null`, `"str"`} {
		t.Run(seed, func(t *testing.T) {
			tracker, _ := newTracker(t, seed)

			if n := len(tracker.Completions()); n != 0 {
				t.Fatalf("expected empty map, got %d entries", n)
			}
			completed, err := tracker.Toggle(context.Background(), "todo-app")
			if err != nil || !completed {
				t.Fatalf("toggle over corrupt state: %v, %v", completed, err)
			}
		})
	}
}

func TestNewTrackerStoreError(t *testing.T) {
	store := &countingStore{Store: storage.NewMemoryStore(), failGet: errors.New("boom")}
	if _, err := NewTracker(context.Background(), testCatalog(t), store, testKey); err == nil {
		t.Fatal("expected error from unreadable store")
	}
}

func TestTierProgressBounds(t *testing.T) {
	tracker, _ := newTracker(t, `{"todo-app":true,"counter-app":true,"weather-widget":true,"shopping-cart":true}`)

	for _, tier := range []models.Difficulty{models.Beginner, models.Intermediate, models.Advanced, "legendary"} {
		p := tracker.TierProgress(tier)
		if p.Percentage < 0 || p.Percentage > 100 {
			t.Errorf("%s: percentage %v out of range", tier, p.Percentage)
		}
		if p.TotalCount == 0 && p.Percentage != 0 {
			t.Errorf("%s: empty tier must report 0%%, got %v", tier, p.Percentage)
		}
	}
	if p := tracker.TierProgress(models.Beginner); p.Percentage != 100 {
		t.Errorf("expected 100%%, got %v", p.Percentage)
	}
}

func TestSummary(t *testing.T) {
	tracker, _ := newTracker(t, `{"todo-app":true,"shopping-cart":true,"counter-app":true,"ghost-project":true}`)

	s := tracker.Summary()
	if s.CompletedCount != 3 || s.TotalCount != 4 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.Percentage != 75 {
		t.Errorf("expected 75%%, got %v", s.Percentage)
	}
	if s.Level != models.LevelIntermediate {
		t.Errorf("expected Intermediate, got %s", s.Level)
	}
	if s.Standing.Next == nil || *s.Standing.Next != models.LevelAdvanced || s.Standing.Remaining != 3 {
		t.Errorf("unexpected standing: %+v", s.Standing)
	}
	if len(s.Tiers) != 3 || s.Tiers[0].Tier != models.Beginner || s.Tiers[0].CompletedCount != 2 {
		t.Errorf("unexpected tiers: %+v", s.Tiers)
	}
}

func TestReset(t *testing.T) {
	tracker, store := newTracker(t, `{"todo-app":true}`)
	ctx := context.Background()

	if err := tracker.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if tracker.IsCompleted("todo-app") {
		t.Error("expected nothing completed after reset")
	}
	if data, _ := store.Get(ctx, testKey); data != nil {
		t.Errorf("expected key removed, got %q", data)
	}
}

func TestReload(t *testing.T) {
	tracker, store := newTracker(t, "")
	ctx := context.Background()

	changed, err := tracker.Reload(ctx)
	if err != nil || changed {
		t.Fatalf("expected no change, got %v, %v", changed, err)
	}

	_ = store.Store.Set(ctx, testKey, []byte(`{"shopping-cart":true}`))
	changed, err = tracker.Reload(ctx)
	if err != nil || !changed {
		t.Fatalf("expected change, got %v, %v", changed, err)
	}
	if !tracker.IsCompleted("shopping-cart") {
		t.Error("reload did not pick up external write")
	}
}

func TestOnChange(t *testing.T) {
	tracker, _ := newTracker(t, "")
	ctx := context.Background()

	var got []models.Summary
	tracker.OnChange(func(s models.Summary) { got = append(got, s) })

	_, _ = tracker.Toggle(ctx, "todo-app")
	_ = tracker.Reset(ctx)

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].CompletedCount != 1 || got[1].CompletedCount != 0 {
		t.Errorf("unexpected summaries: %+v", got)
	}
}

func TestOnChangeDeliversLatestSummaryLast(t *testing.T) {
	tracker, _ := newTracker(t, "")
	ctx := context.Background()

	var (
		mu   sync.Mutex
		last models.Summary
		n    int
	)
	tracker.OnChange(func(s models.Summary) {
		mu.Lock()
		defer mu.Unlock()
		last = s
		n++
	})

	ids := []string{"todo-app", "counter-app", "weather-widget", "shopping-cart"}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := tracker.Toggle(ctx, id); err != nil {
				t.Errorf("Toggle(%s) failed: %v", id, err)
			}
		}(ids[i%len(ids)])
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if n != 40 {
		t.Fatalf("expected 40 notifications, got %d", n)
	}
	if want := tracker.Summary(); !reflect.DeepEqual(last, want) {
		t.Fatalf("last notified summary is stale: got completed=%d, tracker has completed=%d",
			last.CompletedCount, want.CompletedCount)
	}
}

func TestOnChangeRunsInMutationOrder(t *testing.T) {
	tracker, _ := newTracker(t, "")
	ctx := context.Background()

	// Each notification must reflect exactly one more change than the previous one.
	var seen []int
	tracker.OnChange(func(s models.Summary) { seen = append(seen, s.CompletedCount) })

	var wg sync.WaitGroup
	for _, id := range []string{"todo-app", "counter-app", "weather-widget"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = tracker.Toggle(ctx, id)
		}(id)
	}
	wg.Wait()

	if got := fmt.Sprint(seen); got != "[1 2 3]" {
		t.Fatalf("expected notifications [1 2 3], got %s", got)
	}
}
