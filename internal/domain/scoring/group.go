package scoring

// bestByKey keeps one candidate per key, remembering the order in which keys
// were first seen. A later candidate replaces the kept one only when better
// reports true, so ties keep the earliest entry.
type bestByKey[K comparable, V any] struct {
	order  []K
	best   map[K]V
	better func(candidate, current V) bool
}

func newBestByKey[K comparable, V any](better func(candidate, current V) bool) *bestByKey[K, V] {
	return &bestByKey[K, V]{
		best:   make(map[K]V),
		better: better,
	}
}

func (b *bestByKey[K, V]) offer(k K, v V) {
	cur, ok := b.best[k]
	if !ok {
		b.order = append(b.order, k)
		b.best[k] = v
		return
	}
	if b.better(v, cur) {
		b.best[k] = v
	}
}

// values returns the kept candidates in first-seen key order.
func (b *bestByKey[K, V]) values() []V {
	out := make([]V, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.best[k])
	}
	return out
}

// sumOf folds items into the sum of f over them.
func sumOf[T any](items []T, f func(T) float64) float64 {
	var total float64
	for _, it := range items {
		total += f(it)
	}
	return total
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
