package repository

import (
	"fmt"
	"math"
	"testing"
)

func collectAllEntries(root *node) []indexEntry {
	out := make([]indexEntry, 0, nsize(root))
	collectOrdered(root, -1, &out)
	return out
}

func TestTreapOrdering(t *testing.T) {
	var root *node
	inserts := []struct {
		key    string
		points float64
	}{
		{"charlie", 75.0},
		{"alpha", 85.0},
		{"echo", 80.0},
		{"delta", 100.0},
		{"bravo", 95.0},
	}
	for _, in := range inserts {
		root = insertNode(root, in.key, toFixedPoint(in.points))
	}

	if nsize(root) != 5 {
		t.Fatalf("expected size 5, got %d", nsize(root))
	}

	entries := collectAllEntries(root)
	wantOrder := []string{"delta", "bravo", "alpha", "echo", "charlie"}
	for i, want := range wantOrder {
		if entries[i].key != want {
			t.Errorf("position %d: expected %s, got %s", i, want, entries[i].key)
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].points > entries[i-1].points {
			t.Errorf("points out of order: %d > %d", entries[i].points, entries[i-1].points)
		}
	}
}

func TestTreapKeyTieBreak(t *testing.T) {
	var root *node
	for _, key := range []string{"zulu", "alpha", "mike"} {
		root = insertNode(root, key, toFixedPoint(50.0))
	}

	entries := collectAllEntries(root)
	wantOrder := []string{"alpha", "mike", "zulu"}
	for i, want := range wantOrder {
		if entries[i].key != want {
			t.Errorf("position %d: expected %s, got %s", i, want, entries[i].key)
		}
	}
}

func TestTreapDelete(t *testing.T) {
	var root *node
	for i, key := range []string{"a", "b", "c", "d", "e"} {
		root = insertNode(root, key, toFixedPoint(float64(10*(i+1))))
	}

	// Deleting with the wrong points is a no-op, not a corruption. The
	// reindex path relies on this when a delete races a stale total.
	root = deleteNode(root, "c", toFixedPoint(999.0))
	if nsize(root) != 5 {
		t.Errorf("expected delete with wrong points to be a no-op, size %d", nsize(root))
	}

	root = deleteNode(root, "c", toFixedPoint(30.0))
	if nsize(root) != 4 {
		t.Errorf("expected size 4 after delete, got %d", nsize(root))
	}
	for _, e := range collectAllEntries(root) {
		if e.key == "c" {
			t.Error("deleted key still present")
		}
	}

	// Delete down to empty.
	for i, key := range []string{"a", "b", "d", "e"} {
		points := []float64{10, 20, 40, 50}[i]
		root = deleteNode(root, key, toFixedPoint(points))
	}
	if root != nil {
		t.Errorf("expected empty tree, got size %d", nsize(root))
	}
}

func TestTreapReindexMove(t *testing.T) {
	var root *node
	root = insertNode(root, "mover", toFixedPoint(10.0))
	root = insertNode(root, "anchor", toFixedPoint(50.0))

	// Simulate a fold: remove the old total, insert the new one.
	root = deleteNode(root, "mover", toFixedPoint(10.0))
	root = insertNode(root, "mover", toFixedPoint(90.0))

	entries := collectAllEntries(root)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].key != "mover" {
		t.Errorf("expected mover first after reindex, got %s", entries[0].key)
	}
	if got := toFloat(entries[0].points); got != 90.0 {
		t.Errorf("expected 90 points, got %f", got)
	}
}

func TestTreapCollectLimit(t *testing.T) {
	var root *node
	for i := 0; i < 20; i++ {
		root = insertNode(root, fmt.Sprintf("p%02d", i), toFixedPoint(float64(i)))
	}

	out := make([]indexEntry, 0, 5)
	collectOrdered(root, 5, &out)
	if len(out) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(out))
	}
	if out[0].key != "p19" || out[4].key != "p15" {
		t.Errorf("unexpected window: %s .. %s", out[0].key, out[4].key)
	}

	out = out[:0]
	collectOrdered(root, 100, &out)
	if len(out) != 20 {
		t.Errorf("expected all 20 entries, got %d", len(out))
	}

	out = out[:0]
	collectOrdered(nil, 5, &out)
	if len(out) != 0 {
		t.Errorf("expected nothing from empty tree, got %d", len(out))
	}
}

func TestRanksWithTies(t *testing.T) {
	entries := []indexEntry{
		{"a", toFixedPoint(412.5)},
		{"b", toFixedPoint(318.0)},
		{"c", toFixedPoint(318.0)},
		{"d", toFixedPoint(117.25)},
		{"e", toFixedPoint(117.25)},
		{"f", toFixedPoint(117.25)},
		{"g", toFixedPoint(5.0)},
	}
	want := []int{1, 2, 2, 4, 4, 4, 7}
	got := ranksWithTies(entries)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected rank %d, got %d", i, want[i], got[i])
		}
	}

	// A prefix ranks identically to the same rows in the full table.
	prefix := ranksWithTies(entries[:4])
	for i := range prefix {
		if prefix[i] != want[i] {
			t.Errorf("prefix position %d: expected rank %d, got %d", i, want[i], prefix[i])
		}
	}

	if len(ranksWithTies(nil)) != 0 {
		t.Error("expected no ranks for no entries")
	}
}

func TestFixedPointConversion(t *testing.T) {
	values := []float64{0.0, 42.5, 83.757575, 1e6, 0.001}
	for _, v := range values {
		got := toFloat(toFixedPoint(v))
		if math.Abs(got-v) > 1e-9 {
			t.Errorf("round trip for %g: got %g", v, got)
		}
	}

	if toFixedPoint(math.NaN()) != 0 {
		t.Error("expected NaN to map to zero")
	}
	if toFixedPoint(math.Inf(1)) != pointsFP(math.MaxInt64) {
		t.Error("expected +Inf to clamp to the maximum")
	}
	if toFixedPoint(math.Inf(-1)) != pointsFP(math.MinInt64) {
		t.Error("expected -Inf to clamp to the minimum")
	}
}

func TestTreapStaysShallowOnEqualPoints(t *testing.T) {
	// Early in a season almost everyone sits on zero points. Hashed
	// priorities keep the tree near log depth instead of degrading to a
	// list ordered by key.
	var root *node
	n := 2000
	for i := 0; i < n; i++ {
		root = insertNode(root, fmt.Sprintf("player-%05d", i), 0)
	}

	if nsize(root) != n {
		t.Fatalf("expected size %d, got %d", n, nsize(root))
	}

	var height func(*node) int
	height = func(nd *node) int {
		if nd == nil {
			return 0
		}
		l, r := height(nd.left), height(nd.right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	if h := height(root); h > 80 {
		t.Errorf("tree depth %d suggests degenerate balance for %d equal entries", h, n)
	}
}
