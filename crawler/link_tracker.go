package crawler

import (
	"sync"
)

// LinkTracker remembers which links were already handled during one run
// and which file names they were given.
type LinkTracker struct {
	links map[string]struct{}
	names map[string]string
	mutex sync.RWMutex
}

func NewLinkTracker() *LinkTracker {
	return &LinkTracker{
		links: make(map[string]struct{}),
		names: make(map[string]string),
	}
}

// Record marks link as handled and reports whether it was new.
func (t *LinkTracker) Record(link string) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.links[link]; ok {
		return false
	}
	t.links[link] = struct{}{}
	return true
}

// Claim reserves name for link. When another link already owns name, a
// hashed variant is returned instead.
func (t *LinkTracker) Claim(name, link string) string {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if owner, ok := t.names[name]; ok && owner != link {
		name = withHashSuffix(name, link)
	}
	t.names[name] = link
	return name
}

func (t *LinkTracker) UniqueLinks() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return len(t.links)
}
