package utils

import (
	"sync"

	cmap "github.com/orcaman/concurrent-map"
)

// KeyedMutex serializes work per entity id. Command handlers and scheduled
// completions for the same village must never interleave; different
// villages proceed in parallel.
type KeyedMutex struct {
	locks cmap.ConcurrentMap
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: cmap.New()}
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	mu := k.get(key)
	mu.Lock()
	return mu.Unlock
}

func (k *KeyedMutex) get(key string) *sync.Mutex {
	if v, ok := k.locks.Get(key); ok {
		return v.(*sync.Mutex)
	}
	mu := &sync.Mutex{}
	if !k.locks.SetIfAbsent(key, mu) {
		// Lost the race; use the winner's mutex.
		v, _ := k.locks.Get(key)
		return v.(*sync.Mutex)
	}
	return mu
}
