package order

import "sync"

// ownerLocks hands out one mutex per owner and forgets it once nobody
// holds or waits for it.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[int]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func (l *ownerLocks) lock(ownerID int) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int]*ownerLock)
	}
	ol, ok := l.locks[ownerID]
	if !ok {
		ol = &ownerLock{}
		l.locks[ownerID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()
	return func() {
		ol.mu.Unlock()
		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}
}
