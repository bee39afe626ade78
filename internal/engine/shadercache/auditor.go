package shadercache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Collision is reported when one key is seen with two different program texts.
type Collision[K comparable] struct {
	Key         K
	FirstLabel  string
	First       string
	SecondLabel string
	Second      string
}

type auditRecord struct {
	hash   uint64
	label  string
	source string
}

// Auditor keeps the first program text seen for every key and flags keys that later show up
// with different text. It only reports; it never changes what the cache stores.
type Auditor[K comparable] struct {
	mu    sync.Mutex
	index map[K]auditRecord
}

// NewAuditor creates an empty auditor.
func NewAuditor[K comparable]() *Auditor[K] {
	return &Auditor[K]{index: make(map[K]auditRecord)}
}

// AddToIndexAndCheck records source under key the first time key is seen. Later calls with a
// different source return a Collision; identical text returns nil.
func (a *Auditor[K]) AddToIndexAndCheck(source string, key K, label string) *Collision[K] {
	h := xxhash.Sum64String(source)

	a.mu.Lock()
	defer a.mu.Unlock()

	prev, ok := a.index[key]
	if !ok {
		a.index[key] = auditRecord{hash: h, label: label, source: source}
		return nil
	}
	if prev.hash == h && prev.source == source {
		return nil
	}
	return &Collision[K]{
		Key:         key,
		FirstLabel:  prev.label,
		First:       prev.source,
		SecondLabel: label,
		Second:      source,
	}
}

// Len returns the number of indexed keys.
func (a *Auditor[K]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.index)
}

// Invalidate forgets every indexed key.
func (a *Auditor[K]) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.index)
}
