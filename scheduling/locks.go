package scheduling

import "sync"

// CourtLocks serializes the check-then-assign sequence per court. Reading
// the current state and writing the assignment without holding the court's
// lock is exactly the race the detector cannot see.
type CourtLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewCourtLocks() *CourtLocks {
	return &CourtLocks{locks: make(map[int]*sync.Mutex)}
}

// Lock acquires the lock for the given court and returns its release func.
func (c *CourtLocks) Lock(courtID int) func() {
	c.mu.Lock()
	lock, ok := c.locks[courtID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[courtID] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
