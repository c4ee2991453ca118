package afm

import (
	"io"
	"sync"
)

// cache is process-wide state, guarded by a plain mutex rather than any
// lock-free trick - the simplest of the two options the concurrency
// model allows for font-cache bookkeeping.
var (
	cacheMu sync.RWMutex
	cache   = map[string]*Metrics{}
)

// Normalize reduces a font name to the cache key: uppercase, alphabetic
// characters only. It is idempotent - Normalize(Normalize(n)) ==
// Normalize(n) - since a second pass over an already-normalized string
// changes nothing.
func Normalize(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c >= 'A' && c <= 'Z':
			out = append(out, c)
		}
	}
	return string(out)
}

// Lookup returns a previously cached Metrics for the normalized name.
func Lookup(name string) (*Metrics, bool) {
	key := Normalize(name)
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	m, ok := cache[key]
	return m, ok
}

// LoadAndCache parses r as an AFM file and stores the result under
// name's normalized form, returning the cached entry if another caller
// already populated it first - first writer wins, matching the "safe
// for concurrent first use" contract rather than re-parsing redundantly.
func LoadAndCache(name string, r io.Reader) (*Metrics, error) {
	key := Normalize(name)

	cacheMu.RLock()
	if m, ok := cache[key]; ok {
		cacheMu.RUnlock()
		return m, nil
	}
	cacheMu.RUnlock()

	m, err := Parse(r)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if existing, ok := cache[key]; ok {
		return existing, nil
	}
	cache[key] = m
	return m, nil
}
