package journal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"
	"github.com/nickyhof/MemDB/core"
)

const tablesDir = "tables"

var (
	ErrNoSnapshots        = errors.New("nothing to record")
	ErrUnknownTransaction = errors.New("unknown transaction")
)

// Journal is an append-only history of table snapshots. It is safe for
// concurrent use.
type Journal struct {
	repo *git.Repository
	mu   sync.RWMutex
}

// New creates an empty journal backed by an in-memory repository.
func New() (*Journal, error) {
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(memfs.New()))
	if err != nil {
		return nil, err
	}

	return &Journal{repo: repo}, nil
}

// Record commits the given table snapshots with message as the commit
// message, authored by identity.
func (j *Journal) Record(identity core.Identity, message string, snapshots ...Snapshot) (Transaction, error) {
	if len(snapshots) == 0 {
		return Transaction{}, ErrNoSnapshots
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	currentTree, err := j.currentTree()
	if err != nil {
		return Transaction{}, err
	}

	changes := make([]treeChange, 0, len(snapshots))
	for _, snapshot := range snapshots {
		data, err := snapshot.encode()
		if err != nil {
			return Transaction{}, fmt.Errorf("failed to encode %s: %w", snapshot.Table.Name, err)
		}

		blobHash, err := j.createBlob(data)
		if err != nil {
			return Transaction{}, fmt.Errorf("failed to create blob for %s: %w", snapshot.Table.Name, err)
		}

		changes = append(changes, treeChange{path: snapshot.path(), blobHash: blobHash})
	}

	newTree, err := j.applyChanges(currentTree, changes)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to update tree: %w", err)
	}

	return j.commitTree(newTree, identity, message)
}

// Latest returns the most recent transaction, or the zero Transaction when
// nothing has been recorded.
func (j *Journal) Latest() Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()

	headRef, err := j.repo.Head()
	if err != nil || headRef == nil {
		return Transaction{}
	}

	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Transaction{}
	}

	return transactionFromCommit(commit)
}

// History lists every transaction, newest first.
func (j *Journal) History() []Transaction {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return j.history()
}

func (j *Journal) history() []Transaction {
	if _, err := j.repo.Head(); err != nil {
		return nil
	}

	cIter, err := j.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil
	}
	defer cIter.Close()

	var transactions []Transaction
	cIter.ForEach(func(c *object.Commit) error {
		transactions = append(transactions, transactionFromCommit(c))
		return nil
	})

	return transactions
}

// resolve accepts a full commit id or a unique prefix of one.
func (j *Journal) resolve(id string) (*object.Commit, error) {
	if len(id) == 40 {
		commit, err := j.repo.CommitObject(plumbing.NewHash(id))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTransaction, id)
		}
		return commit, nil
	}

	var match string
	for _, txn := range j.history() {
		if id != "" && strings.HasPrefix(txn.Id, id) {
			if match != "" {
				return nil, fmt.Errorf("%w: %s is ambiguous", ErrUnknownTransaction, id)
			}
			match = txn.Id
		}
	}
	if match == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransaction, id)
	}

	return j.repo.CommitObject(plumbing.NewHash(match))
}

// TableAt returns the snapshot of table as it was after transaction id.
func (j *Journal) TableAt(id, table string) (Snapshot, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	commit, err := j.resolve(id)
	if err != nil {
		return Snapshot{}, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get tree: %w", err)
	}

	file, err := tree.File(tablePath(table))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s", core.ErrUnknownTable, table)
	}

	content, err := file.Contents()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read contents: %w", err)
	}

	return decodeSnapshot([]byte(content))
}

// TablesAt lists the tables that existed after transaction id, sorted.
func (j *Journal) TablesAt(id string) ([]string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	commit, err := j.resolve(id)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	dir, err := tree.Tree(tablesDir)
	if err != nil {
		return nil, nil
	}

	var names []string
	for _, entry := range dir.Entries {
		names = append(names, strings.TrimSuffix(entry.Name, ".json"))
	}
	sort.Strings(names)

	return names, nil
}
