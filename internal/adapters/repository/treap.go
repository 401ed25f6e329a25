package repository

import (
	"hash/fnv"
	"math"
)

// Treap-backed standings index.
//
// Ordering: season points DESC, then player key ASC (deterministic).
// "less" means ranks earlier, so an in-order traversal walks the
// standings from best to worst. Priorities come from a hash of the key,
// keeping the tree balanced in expectation even when most players sit
// on identical point totals early in a season.

// pointsScale controls fixed-point scaling from float64, nine decimal
// places. Point totals stay well inside the int64 range.
const pointsScale = 1_000_000_000

type pointsFP int64

func toFixedPoint(x float64) pointsFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * pointsScale
	if scaled > float64(math.MaxInt64) {
		return pointsFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return pointsFP(math.MinInt64)
	}
	return pointsFP(math.Round(scaled))
}

func toFloat(x pointsFP) float64 {
	return float64(x) / pointsScale
}

// indexEntry is one standings position in traversal order.
type indexEntry struct {
	key    string
	points pointsFP
}

// treap node
type node struct {
	key    string
	points pointsFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aPoints, aKey) should appear before (bPoints, bKey)
// in the standings (higher totals first).
func less(aPoints pointsFP, aKey string, bPoints pointsFP, bKey string) bool {
	if aPoints != bPoints {
		return aPoints > bPoints
	}
	return aKey < bKey
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// keyPriority hashes the player key so heap priorities are independent
// of point totals yet identical across runs.
func keyPriority(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}

func insertNode(n *node, key string, points pointsFP) *node {
	if n == nil {
		return &node{key: key, points: points, prio: keyPriority(key), size: 1}
	}
	if less(points, key, n.points, n.key) {
		n.left = insertNode(n.left, key, points)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insertNode(n.right, key, points)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, key string, points pointsFP) *node {
	if n == nil {
		return nil
	}
	if points == n.points && key == n.key {
		// Merge children by rotating the higher priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, key, points)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, key, points)
		}
	} else if less(points, key, n.points, n.key) {
		n.left = deleteNode(n.left, key, points)
	} else {
		n.right = deleteNode(n.right, key, points)
	}
	fix(n)
	return n
}

// collectOrdered appends entries in standings order. A negative limit
// collects the whole tree.
func collectOrdered(n *node, limit int, out *[]indexEntry) {
	if n == nil || (limit >= 0 && len(*out) >= limit) {
		return
	}
	collectOrdered(n.left, limit, out)
	if limit < 0 || len(*out) < limit {
		*out = append(*out, indexEntry{key: n.key, points: n.points})
	}
	if limit < 0 || len(*out) < limit {
		collectOrdered(n.right, limit, out)
	}
}

// ranksWithTies assigns competition ranks over ordered entries: equal
// totals share a rank and the entry after a tie group skips past it.
// A rank depends only on the entries before it, so ranking a standings
// prefix gives the same numbers as ranking the full table.
func ranksWithTies(entries []indexEntry) []int {
	ranks := make([]int, len(entries))
	for i := range entries {
		if i > 0 && entries[i].points == entries[i-1].points {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}
