package services

import "sync"

// keyedMutex serializes operations per candidate id, so a concurrent
// upload and submit against the same staging directory cannot interleave.
// Entries are never evicted; the population is bounded by the number of
// candidates with portfolio activity.
type keyedMutex struct {
	locks sync.Map
}

// lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) lock(key int64) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
