package preset

import (
	"sync/atomic"

	"lintconf/internal/config"
)

// Store publishes registry snapshots for hot reload. Readers take the
// current snapshot once per resolution and keep using it.
type Store struct {
	cur atomic.Pointer[Snapshot]
}

func NewStore(s *Snapshot) *Store {
	st := &Store{}
	if s == nil {
		s = Empty()
	}
	st.cur.Store(s)
	return st
}

// Snapshot returns the currently published snapshot.
func (st *Store) Snapshot() *Snapshot {
	if s := st.cur.Load(); s != nil {
		return s
	}
	return Empty()
}

// Publish replaces the current snapshot and returns the previous one.
func (st *Store) Publish(s *Snapshot) *Snapshot {
	if s == nil {
		s = Empty()
	}
	return st.cur.Swap(s)
}

// Lookup reads through the current snapshot. Callers resolving more than one
// name should pin a Snapshot instead so every lookup sees the same content.
func (st *Store) Lookup(name string) ([]config.Declaration, bool) {
	return st.Snapshot().Lookup(name)
}
