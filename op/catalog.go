package op

import (
	"errors"

	"github.com/nickyhof/MemDB/journal"
	"github.com/nickyhof/MemDB/store"
)

var ErrNoJournal = errors.New("journal is disabled")

// CatalogOp wraps store-wide operations.
type CatalogOp struct {
	Store   *store.Store
	Journal *journal.Journal
}

func GetCatalog(st *store.Store, jnl *journal.Journal) *CatalogOp {
	return &CatalogOp{Store: st, Journal: jnl}
}

func (op *CatalogOp) TableNames() []string {
	return op.Store.TableNames()
}

// History lists the journal, newest first.
func (op *CatalogOp) History() ([]journal.Transaction, error) {
	if op.Journal == nil {
		return nil, ErrNoJournal
	}
	return op.Journal.History(), nil
}

// TableNamesAt lists the tables that existed after transaction id.
func (op *CatalogOp) TableNamesAt(id string) ([]string, error) {
	if op.Journal == nil {
		return nil, ErrNoJournal
	}
	return op.Journal.TablesAt(id)
}
