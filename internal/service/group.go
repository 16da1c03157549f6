package service

// groupBy buckets items under the key each one maps to. Used for the
// lessons-by-quest, tasks-by-enrollment and links-by-quest groupings that
// course aggregation relies on instead of per-quest queries.
func groupBy[K comparable, V any](items []V, key func(V) K) map[K][]V {
	grouped := make(map[K][]V, len(items))
	for _, item := range items {
		k := key(item)
		grouped[k] = append(grouped[k], item)
	}
	return grouped
}

// indexBy maps each item under its key; later items win on collision.
func indexBy[K comparable, V any](items []V, key func(V) K) map[K]V {
	indexed := make(map[K]V, len(items))
	for _, item := range items {
		indexed[key(item)] = item
	}
	return indexed
}
