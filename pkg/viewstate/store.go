package viewstate

import "sync"

// Listener is called synchronously after a bucket changes.
type Listener func(Key)

// listeners is the subscriber set shared by every store.
type listeners[F any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]F
}

func (l *listeners[F]) add(fn F) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]F)
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners[F]) snapshot() []F {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]F, 0, len(l.fns))
	for _, fn := range l.fns {
		out = append(out, fn)
	}
	return out
}

// buckets holds one state value per Key, created lazily from a default.
type buckets[S any] struct {
	mu      sync.RWMutex
	state   map[Key]S
	initial func() S
	subs    listeners[Listener]
}

func (b *buckets[S]) init(initial func() S) {
	b.state = make(map[Key]S)
	b.initial = initial
}

func (b *buckets[S]) get(key Key) S {
	b.mu.RLock()
	s, ok := b.state[key]
	b.mu.RUnlock()
	if ok {
		return s
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.state[key]; ok {
		return s
	}
	s = b.initial()
	b.state[key] = s
	return s
}

// update merges fn's result into the bucket and notifies every listener.
// Listeners run after the lock is released.
func (b *buckets[S]) update(key Key, fn func(S) S) S {
	b.mu.Lock()
	s, ok := b.state[key]
	if !ok {
		s = b.initial()
	}
	s = fn(s)
	b.state[key] = s
	b.mu.Unlock()

	for _, l := range b.subs.snapshot() {
		l(key)
	}
	return s
}

// Subscribe registers fn and returns the function that removes it.
func (b *buckets[S]) Subscribe(fn Listener) (unsubscribe func()) {
	return b.subs.add(fn)
}

// Snapshot returns a copy of every bucket created so far.
func (b *buckets[S]) Snapshot() map[Key]S {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[Key]S, len(b.state))
	for k, v := range b.state {
		out[k] = v
	}
	return out
}
