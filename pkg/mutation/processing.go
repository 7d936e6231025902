package mutation

import (
	"sort"
	"sync"
	"time"
)

// DefaultGrace is how long a key stays processing after its call settles.
const DefaultGrace = 100 * time.Millisecond

// ProcessingSet tracks entity keys with a mutation in flight so the UI can
// disable their controls. It is advisory: nothing here blocks a second
// mutation for the same key.
type ProcessingSet struct {
	mu     sync.Mutex
	grace  time.Duration
	counts map[string]int
	nextID int
	subs   map[int]func()
}

func NewProcessingSet(grace time.Duration) *ProcessingSet {
	return &ProcessingSet{
		grace:  grace,
		counts: make(map[string]int),
		subs:   make(map[int]func()),
	}
}

// Add marks key as processing. Adds are counted so overlapping calls for the
// same key keep it marked until the last one is released.
func (s *ProcessingSet) Add(key string) {
	s.mu.Lock()
	s.counts[key]++
	s.mu.Unlock()
	s.notify()
}

// Release unmarks key once the grace period has passed.
func (s *ProcessingSet) Release(key string) {
	if s.grace <= 0 {
		s.release(key)
		return
	}
	time.AfterFunc(s.grace, func() { s.release(key) })
}

func (s *ProcessingSet) release(key string) {
	s.mu.Lock()
	n, ok := s.counts[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	if n <= 1 {
		delete(s.counts, key)
	} else {
		s.counts[key] = n - 1
	}
	s.mu.Unlock()
	s.notify()
}

// Has reports whether key is processing.
func (s *ProcessingSet) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key] > 0
}

// Keys returns the processing keys in sorted order.
func (s *ProcessingSet) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.counts))
	for k := range s.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Subscribe registers fn and returns the function that removes it.
func (s *ProcessingSet) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *ProcessingSet) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
