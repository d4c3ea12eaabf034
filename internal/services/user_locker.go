package services

import "sync"

// KeyLocker serializes work per key. Locks are reference counted and removed
// once nobody holds or waits for them.
type KeyLocker[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// UserLocker serializes handlers per chat user.
type UserLocker = KeyLocker[int64]

func NewKeyLocker[K comparable]() *KeyLocker[K] {
	return &KeyLocker[K]{locks: make(map[K]*keyLock)}
}

func NewUserLocker() *UserLocker {
	return NewKeyLocker[int64]()
}

// Lock blocks until key is free and returns the unlock func.
func (l *KeyLocker[K]) Lock(key K) func() {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.Lock()
	return func() {
		kl.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *KeyLocker[K]) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
