package translator

import (
	log "github.com/sirupsen/logrus"
)

// table maps a source identity to a 1-based index in one of the network lists.
type table[K comparable] struct {
	name string
	idx  map[K]int
	log  *log.Logger
}

func newTable[K comparable](name string, l *log.Logger) *table[K] {
	return &table[K]{name: name, idx: make(map[K]int), log: l}
}

func (t *table[K]) set(key K, nr int) {
	t.idx[key] = nr
}

// get is a silent lookup, for optional overlays.
func (t *table[K]) get(key K) (int, bool) {
	nr, ok := t.idx[key]
	return nr, ok
}

// lookup returns (0, false) on a miss and reports it.
func (t *table[K]) lookup(key K) (int, bool) {
	nr, ok := t.idx[key]
	if !ok {
		t.log.Warnf("Unable to look up '%v' in %s", key, t.name)
		return 0, false
	}
	return nr, true
}

func (t *table[K]) snapshot() map[K]int {
	out := make(map[K]int, len(t.idx))
	for k, v := range t.idx {
		out[k] = v
	}
	return out
}
