package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithPrioritySalt prefixes application ids before hashing them into heap
// priorities. Stores built with different salts have different shapes.
func WithPrioritySalt(salt string) Option {
	return func(s *TreapStore) {
		s.salt = salt
	}
}
