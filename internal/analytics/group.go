package analytics

// groupBy folds items into per-key accumulators. Items for which key
// reports false are skipped. Each accumulator starts at A's zero value.
func groupBy[T any, K comparable, A any](items []T, key func(T) (K, bool), reduce func(A, T) A) map[K]A {
	out := make(map[K]A)
	for _, item := range items {
		k, ok := key(item)
		if !ok {
			continue
		}
		out[k] = reduce(out[k], item)
	}
	return out
}
