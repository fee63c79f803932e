package MemDB

import (
	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/db"
	"github.com/nickyhof/MemDB/journal"
	"github.com/nickyhof/MemDB/store"
)

// Instance is one store and its optional journal. Engines created from the
// same instance see each other's writes.
type Instance struct {
	Store   *store.Store
	Journal *journal.Journal
}

// Open wraps st. jnl may be nil to run without a journal.
func Open(st *store.Store, jnl *journal.Journal) *Instance {
	return &Instance{
		Store:   st,
		Journal: jnl,
	}
}

// OpenMemory creates a fresh store, with a journal when journaled is true.
func OpenMemory(journaled bool) (*Instance, error) {
	var jnl *journal.Journal
	if journaled {
		var err error
		jnl, err = journal.New()
		if err != nil {
			return nil, err
		}
	}
	return Open(store.New(), jnl), nil
}

// Engine returns an engine acting as identity. Engines are not safe for
// concurrent use; give each goroutine its own and serialise access to the
// shared store.
func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Store, instance.Journal, identity)
}
