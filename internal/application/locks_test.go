package application

import (
	"sync"
	"testing"
)

func TestLocks(t *testing.T) {
	t.Run("serializes one project", func(t *testing.T) {
		locks := NewLocks()
		var counter int

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("talks")
				counter++
				unlock()
			}()
		}
		wg.Wait()

		if counter != 50 {
			t.Errorf("counter = %d, want 50", counter)
		}
	})

	t.Run("lock pair with concurrent opposite order", func(t *testing.T) {
		locks := NewLocks()

		// Opposite acquisition orders deadlock unless the pair is
		// ordered internally.
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				unlock := locks.LockPair("a", "b")
				unlock()
			}()
			go func() {
				defer wg.Done()
				unlock := locks.LockPair("b", "a")
				unlock()
			}()
		}
		wg.Wait()
	})

	t.Run("lock pair of the same project", func(t *testing.T) {
		locks := NewLocks()
		unlock := locks.LockPair("a", "a")
		unlock()

		// still usable afterwards
		unlock = locks.Lock("a")
		unlock()
	})
}
