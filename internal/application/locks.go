package application

import "sync"

// Locks serializes mutations per project: descriptor edits, index
// rebuilds and reconciles for one project never interleave, while
// different projects proceed independently.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocks creates an empty lock registry.
func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

func (l *Locks) get(projectID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[projectID] = m
	}
	return m
}

// Lock acquires the project's mutation lock and returns the unlock
// function.
func (l *Locks) Lock(projectID string) func() {
	m := l.get(projectID)
	m.Lock()
	return m.Unlock
}

// LockPair acquires two project locks in lexicographic ID order so
// concurrent cross-project transfers cannot deadlock. Locking the
// same project twice is a single acquisition.
func (l *Locks) LockPair(a, b string) func() {
	if a == b {
		return l.Lock(a)
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	unlockFirst := l.Lock(first)
	unlockSecond := l.Lock(second)
	return func() {
		unlockSecond()
		unlockFirst()
	}
}
