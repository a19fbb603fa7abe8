package wizard

import "sync"

// draftLocks serializes read-modify-write cycles on the same draft within
// this process. Entries are dropped once no caller holds or waits for them.
type draftLocks struct {
	mu    sync.Mutex
	locks map[string]*draftLock
}

type draftLock struct {
	sync.Mutex
	refs int
}

func (l *draftLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*draftLock)
	}
	dl, ok := l.locks[id]
	if !ok {
		dl = &draftLock{}
		l.locks[id] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.Lock()
	return func() {
		dl.Unlock()
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *draftLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
