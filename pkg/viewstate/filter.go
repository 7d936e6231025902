package viewstate

// FilterStore owns the free-text filter of every view. Empty means no filter.
type FilterStore struct {
	buckets[string]
}

func NewFilterStore() *FilterStore {
	s := &FilterStore{}
	s.init(func() string { return "" })
	return s
}

// Get returns the filter for key.
func (s *FilterStore) Get(key Key) string {
	return s.get(key)
}

// Set replaces the filter. Subscribers are notified even when the value is
// unchanged.
func (s *FilterStore) Set(key Key, value string) {
	s.update(key, func(string) string { return value })
}
