package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"
)

// floatEqual compares two float64 values with a small tolerance for floating-point precision
func floatEqual(a, b float64) bool {
	const tolerance = 1e-9
	return math.Abs(a-b) < tolerance
}

func entry(id string, composite float64) Entry {
	return Entry{ApplicationID: id, Applicant: "applicant-" + id, RulesetVersion: "2025", Composite: composite}
}

// checkInvariants walks the treap and verifies heap order, BST order and
// subtree sizes.
func checkInvariants(t *testing.T, n *node) int {
	t.Helper()
	if n == nil {
		return 0
	}
	if n.left != nil {
		if n.left.prio > n.prio {
			t.Errorf("heap order violated at %s", n.id)
		}
		if !less(n.left.score, n.left.id, n.score, n.id) {
			t.Errorf("left child %s does not rank before %s", n.left.id, n.id)
		}
	}
	if n.right != nil {
		if n.right.prio > n.prio {
			t.Errorf("heap order violated at %s", n.id)
		}
		if !less(n.score, n.id, n.right.score, n.right.id) {
			t.Errorf("right child %s does not rank after %s", n.right.id, n.id)
		}
	}
	size := 1 + checkInvariants(t, n.left) + checkInvariants(t, n.right)
	if size != n.size {
		t.Errorf("size of %s: expected %d, got %d", n.id, size, n.size)
	}
	return size
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	// Test empty store
	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	created, err := store.Upsert(ctx, entry("app1", 85.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected first upsert to create the entry")
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	e, err := store.Rank(ctx, "app1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Rank != 1 {
		t.Errorf("expected rank 1, got %d", e.Rank)
	}
	if e.Composite != 85.5 {
		t.Errorf("expected composite 85.5, got %f", e.Composite)
	}
	if e.Applicant != "applicant-app1" || e.RulesetVersion != "2025" {
		t.Errorf("metadata not preserved: %+v", e)
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].ApplicationID != "app1" {
		t.Errorf("expected [app1], got %+v", entries)
	}
}

func TestTreapStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	_, _ = store.Upsert(ctx, entry("app1", 60))
	_, _ = store.Upsert(ctx, entry("app2", 50))

	// A re-evaluation may lower the composite; the latest one wins.
	created, err := store.Upsert(ctx, entry("app1", 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected second upsert to replace, not create")
	}
	if count := store.Count(ctx); count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}

	e, _ := store.Rank(ctx, "app1")
	if e.Rank != 2 || e.Composite != 40 {
		t.Errorf("expected app1 at rank 2 with 40, got %+v", e)
	}
	e, _ = store.Rank(ctx, "app2")
	if e.Rank != 1 {
		t.Errorf("expected app2 at rank 1, got %d", e.Rank)
	}
	checkInvariants(t, store.root)
}

func TestTreapStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	scores := map[string]float64{
		"a": 72.5,
		"b": 91.25,
		"c": 15,
		"d": 88,
		"e": 0,
	}
	for id, s := range scores {
		if _, err := store.Upsert(ctx, entry(id, s)); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	entries, err := store.TopN(ctx, len(scores))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"b", "d", "a", "c", "e"}
	for i, id := range want {
		if entries[i].ApplicationID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, entries[i].ApplicationID)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, entries[i].Rank)
		}
	}
}

func TestTreapStore_TiesShareRank(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	_, _ = store.Upsert(ctx, entry("z", 90))
	_, _ = store.Upsert(ctx, entry("m", 80))
	_, _ = store.Upsert(ctx, entry("b", 80))
	_, _ = store.Upsert(ctx, entry("k", 70))

	entries, _ := store.TopN(ctx, 4)
	wantIDs := []string{"z", "b", "m", "k"}
	wantRanks := []int{1, 2, 2, 4}
	for i := range entries {
		if entries[i].ApplicationID != wantIDs[i] || entries[i].Rank != wantRanks[i] {
			t.Errorf("position %d: expected %s@%d, got %s@%d",
				i, wantIDs[i], wantRanks[i], entries[i].ApplicationID, entries[i].Rank)
		}
	}

	for id, rank := range map[string]int{"z": 1, "m": 2, "b": 2, "k": 4} {
		e, err := store.Rank(ctx, id)
		if err != nil {
			t.Fatalf("rank %s: %v", id, err)
		}
		if e.Rank != rank {
			t.Errorf("rank %s: expected %d, got %d", id, rank, e.Rank)
		}
	}
}

func TestTreapStore_FloatSumsTie(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	// 0.1+0.2 != 0.3 in float64; fixed-point storage makes them tie.
	_, _ = store.Upsert(ctx, entry("x", 0.1+0.2))
	_, _ = store.Upsert(ctx, entry("y", 0.3))

	x, _ := store.Rank(ctx, "x")
	y, _ := store.Rank(ctx, "y")
	if x.Rank != 1 || y.Rank != 1 {
		t.Errorf("expected shared rank 1, got x=%d y=%d", x.Rank, y.Rank)
	}
}

func TestTreapStore_Page(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	for i := range 10 {
		_, _ = store.Upsert(ctx, entry(fmt.Sprintf("app%02d", i), float64(100-i*5)))
	}
	// Raise app05 to tie with app04 at positions 4 and 5.
	_, _ = store.Upsert(ctx, entry("app05", 80))

	page, err := store.Page(ctx, 6, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(page))
	}
	if page[0].ApplicationID != "app06" || page[0].Rank != 7 {
		t.Errorf("expected app06@7 first, got %s@%d", page[0].ApplicationID, page[0].Rank)
	}

	page, _ = store.Page(ctx, 5, 2)
	if page[0].ApplicationID != "app05" || page[0].Rank != 5 {
		t.Errorf("expected app05 to share rank 5 across the page boundary, got %s@%d", page[0].ApplicationID, page[0].Rank)
	}
	if page[1].ApplicationID != "app06" || page[1].Rank != 7 {
		t.Errorf("expected app06@7 second, got %s@%d", page[1].ApplicationID, page[1].Rank)
	}

	page, _ = store.Page(ctx, 20, 5)
	if len(page) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(page))
	}
}

func TestTreapStore_EdgeCases(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.Rank(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := store.Page(ctx, -1, 5); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit for negative offset, got %v", err)
	}
	if _, err := store.Upsert(ctx, entry("", 10)); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}

	entries, err := store.TopN(ctx, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}

	_, _ = store.Upsert(ctx, entry("nan", math.NaN()))
	if e, _ := store.Rank(ctx, "nan"); e.Composite != 0 {
		t.Errorf("expected NaN to store as 0, got %f", e.Composite)
	}
}

func TestTreapStore_RankCorrectnessUnderLoad(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithPrioritySalt("test"))
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test data

	const n = 2000
	want := make(map[string]float64, n)
	for i := range n * 2 {
		id := fmt.Sprintf("app-%d", i%n)
		// Coarse scores produce plenty of ties.
		s := float64(rng.Intn(400)) / 4
		want[id] = s
		if _, err := store.Upsert(ctx, entry(id, s)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	if got := checkInvariants(t, store.root); got != n {
		t.Fatalf("expected %d nodes, got %d", n, got)
	}

	ids := make([]string, 0, n)
	for id := range want {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if want[ids[i]] != want[ids[j]] {
			return want[ids[i]] > want[ids[j]]
		}
		return ids[i] < ids[j]
	})

	all, err := store.TopN(ctx, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, e := range all {
		if e.ApplicationID != ids[i] {
			t.Fatalf("position %d: expected %s, got %s", i, ids[i], e.ApplicationID)
		}
		if !floatEqual(e.Composite, want[e.ApplicationID]) {
			t.Errorf("%s: expected %f, got %f", e.ApplicationID, want[e.ApplicationID], e.Composite)
		}
		above := 0
		for _, other := range want {
			if other > e.Composite {
				above++
			}
		}
		if e.Rank != above+1 {
			t.Errorf("%s: expected rank %d, got %d", e.ApplicationID, above+1, e.Rank)
		}
		if i%97 == 0 {
			r, _ := store.Rank(ctx, e.ApplicationID)
			if r.Rank != e.Rank {
				t.Errorf("%s: Rank gives %d, TopN gives %d", e.ApplicationID, r.Rank, e.Rank)
			}
		}
	}
}

func TestTreapStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	const writers, perWriter = 8, 200
	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				id := fmt.Sprintf("w%d-%d", w, i)
				if _, err := store.Upsert(ctx, entry(id, float64(i%50))); err != nil {
					t.Errorf("upsert: %v", err)
				}
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(50 * time.Millisecond)
			for time.Now().Before(deadline) {
				if _, err := store.TopN(ctx, 10); err != nil {
					t.Errorf("topN: %v", err)
				}
				_ = store.Count(ctx)
			}
		}()
	}
	wg.Wait()

	if count := store.Count(ctx); count != writers*perWriter {
		t.Errorf("expected %d entries, got %d", writers*perWriter, count)
	}
	checkInvariants(t, store.root)
}

func BenchmarkTreapStore_Upsert(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore()
	ids := make([]string, 10_000)
	for i := range ids {
		ids[i] = fmt.Sprintf("app-%d", i)
	}

	b.ResetTimer()
	for i := range b.N {
		_, _ = store.Upsert(ctx, entry(ids[i%len(ids)], float64(i%1000)/10))
	}
}

func BenchmarkTreapStore_TopN(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore()
	for i := range 10_000 {
		_, _ = store.Upsert(ctx, entry(fmt.Sprintf("app-%d", i), float64(i%1000)/10))
	}

	b.ResetTimer()
	for range b.N {
		_, _ = store.TopN(ctx, 100)
	}
}
