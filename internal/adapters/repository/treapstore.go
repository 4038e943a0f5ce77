package repository

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/merit/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: composite DESC, then application ID ASC. "less" means ranks
// earlier, so an in-order traversal yields the ranking from best to worst.
// Heap priorities are hashes of the application id, which keeps the tree
// balanced in expectation without a random source.

// scoreScale fixes composites to 9 decimal places so that equal scores
// reached through different float sums compare equal.
const scoreScale = 1e9

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x*scoreScale >= math.MaxInt64:
		return math.MaxInt64
	case x*scoreScale <= math.MinInt64:
		return math.MinInt64
	}
	return scoreFP(math.Round(x * scoreScale))
}

func (s scoreFP) float() float64 {
	return float64(s) / scoreScale
}

type record struct {
	score          scoreFP
	applicant      string
	rulesetVersion string
	evaluatedAt    time.Time
}

type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
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

func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n, nn *node) *node {
	if n == nil {
		return nn
	}
	if less(nn.score, nn.id, n.score, n.id) {
		n.left = insert(n.left, nn)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, nn)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countAbove returns the number of nodes whose score is strictly higher.
func countAbove(n *node, score scoreFP) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collect appends up to limit entries in rank order, skipping the first
// offset nodes.
func collect(n *node, offset, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	if left := nsize(n.left); offset >= left {
		offset -= left
	} else {
		collect(n.left, offset, limit, out)
		offset = 0
	}
	if len(*out) >= limit {
		return
	}
	if offset == 0 {
		*out = append(*out, n)
	} else {
		offset--
	}
	collect(n.right, offset, limit, out)
}

// TreapStore keeps the ranking in a size-augmented treap.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record
	salt string
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{byID: make(map[string]record)}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateRankingSize(0)
	return s
}

func (s *TreapStore) priority(id string) uint64 {
	return xxhash.Sum64String(s.salt + id)
}

// Upsert implements Store.Upsert in O(log n) expected time.
func (s *TreapStore) Upsert(_ context.Context, e Entry) (bool, error) { //nolint:gocritic // hugeParam: entries are small value types
	if e.ApplicationID == "" {
		metrics.RecordErrorByComponent("repository", "empty_id")
		return false, ErrEmptyID
	}
	start := time.Now()
	defer func() {
		metrics.RecordRankingUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	score := toFixedPoint(e.Composite)

	s.mu.Lock()
	old, existed := s.byID[e.ApplicationID]
	if existed {
		s.root = deleteNode(s.root, e.ApplicationID, old.score)
	}
	s.byID[e.ApplicationID] = record{
		score:          score,
		applicant:      e.Applicant,
		rulesetVersion: e.RulesetVersion,
		evaluatedAt:    e.EvaluatedAt,
	}
	s.root = insert(s.root, &node{id: e.ApplicationID, score: score, prio: s.priority(e.ApplicationID), size: 1})
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordRankingUpdate()
	metrics.UpdateRankingSize(count)
	return !existed, nil
}

// Rank returns the ranking row for an application in O(log n).
func (s *TreapStore) Rank(_ context.Context, applicationID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[applicationID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return s.entry(applicationID, rec, countAbove(s.root, rec.score)+1), nil
}

// TopN returns the first n rows of the ranking.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	return s.Page(ctx, 0, n)
}

// Page returns up to limit rows starting at the given zero-based position.
func (s *TreapStore) Page(_ context.Context, offset, limit int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if limit < 1 || offset < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(limit, len(s.byID)))
	collect(s.root, offset, limit, &nodes)

	out := make([]Entry, len(nodes))
	for i, n := range nodes {
		rank := offset + i + 1
		switch {
		case i > 0 && n.score == nodes[i-1].score:
			rank = out[i-1].Rank
		case i == 0 && offset > 0:
			rank = countAbove(s.root, n.score) + 1
		}
		out[i] = s.entry(n.id, s.byID[n.id], rank)
	}
	return out, nil
}

// Count returns the number of ranked applications.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *TreapStore) entry(id string, rec record, rank int) Entry {
	return Entry{
		Rank:           rank,
		ApplicationID:  id,
		Applicant:      rec.applicant,
		RulesetVersion: rec.rulesetVersion,
		Composite:      rec.score.float(),
		EvaluatedAt:    rec.evaluatedAt,
	}
}
