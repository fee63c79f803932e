package journal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/nickyhof/MemDB/core"
)

// treeChange sets the blob stored at path.
type treeChange struct {
	path     string
	blobHash plumbing.Hash
}

// createBlob stores data as a blob object without going through the worktree.
func (j *Journal) createBlob(data []byte) (plumbing.Hash, error) {
	obj := j.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to create blob writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("failed to write blob data: %w", err)
	}
	writer.Close()

	hash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store blob: %w", err)
	}

	return hash, nil
}

// currentTree returns the tree of HEAD, or ZeroHash before the first commit.
func (j *Journal) currentTree() (plumbing.Hash, error) {
	headRef, err := j.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, nil
	}

	commit, err := j.repo.CommitObject(headRef.Hash())
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get head commit: %w", err)
	}

	return commit.TreeHash, nil
}

func (j *Journal) treeEntries(treeHash plumbing.Hash) (map[string]object.TreeEntry, error) {
	entries := make(map[string]object.TreeEntry)

	if treeHash == plumbing.ZeroHash {
		return entries, nil
	}

	tree, err := object.GetTree(j.repo.Storer, treeHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	for _, entry := range tree.Entries {
		entries[entry.Name] = entry
	}

	return entries, nil
}

func (j *Journal) storeTree(entries map[string]object.TreeEntry) (plumbing.Hash, error) {
	sorted := make([]object.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		sorted = append(sorted, entry)
	}

	// git orders directories as if their name had a trailing slash
	sort.Slice(sorted, func(a, b int) bool {
		nameA, nameB := sorted[a].Name, sorted[b].Name
		if sorted[a].Mode == filemode.Dir {
			nameA += "/"
		}
		if sorted[b].Mode == filemode.Dir {
			nameB += "/"
		}
		return nameA < nameB
	})

	tree := &object.Tree{Entries: sorted}

	obj := j.repo.Storer.NewEncodedObject()
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to encode tree: %w", err)
	}

	hash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to store tree: %w", err)
	}

	return hash, nil
}

// applyChanges writes every change into the tree rooted at rootTreeHash and
// returns the new root. Changes under the same directory share one rebuild.
func (j *Journal) applyChanges(rootTreeHash plumbing.Hash, changes []treeChange) (plumbing.Hash, error) {
	if len(changes) == 0 {
		return rootTreeHash, nil
	}

	entries, err := j.treeEntries(rootTreeHash)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	nested := make(map[string][]treeChange)
	for _, change := range changes {
		dir, rest, found := strings.Cut(change.path, "/")
		if !found {
			entries[dir] = object.TreeEntry{
				Name: dir,
				Mode: filemode.Regular,
				Hash: change.blobHash,
			}
			continue
		}
		nested[dir] = append(nested[dir], treeChange{path: rest, blobHash: change.blobHash})
	}

	for dir, subChanges := range nested {
		subTreeHash := plumbing.ZeroHash
		if existing, ok := entries[dir]; ok && existing.Mode == filemode.Dir {
			subTreeHash = existing.Hash
		}

		newSubTreeHash, err := j.applyChanges(subTreeHash, subChanges)
		if err != nil {
			return plumbing.ZeroHash, err
		}

		entries[dir] = object.TreeEntry{
			Name: dir,
			Mode: filemode.Dir,
			Hash: newSubTreeHash,
		}
	}

	return j.storeTree(entries)
}

// commitTree creates a commit for treeHash on top of HEAD and moves the
// branch to it.
func (j *Journal) commitTree(treeHash plumbing.Hash, identity core.Identity, message string) (Transaction, error) {
	if treeHash == plumbing.ZeroHash {
		var err error
		treeHash, err = j.storeTree(map[string]object.TreeEntry{})
		if err != nil {
			return Transaction{}, err
		}
	}

	var parentHashes []plumbing.Hash
	headRef, err := j.repo.Head()
	if err == nil {
		parentHashes = []plumbing.Hash{headRef.Hash()}
	}

	sig := object.Signature{
		Name:  identity.Name,
		Email: identity.Email,
		When:  time.Now(),
	}

	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     treeHash,
		ParentHashes: parentHashes,
	}

	obj := j.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return Transaction{}, fmt.Errorf("failed to encode commit: %w", err)
	}

	commitHash, err := j.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to store commit: %w", err)
	}

	branchName := plumbing.Master
	if head, err := j.repo.Storer.Reference(plumbing.HEAD); err == nil && head.Type() == plumbing.SymbolicReference {
		branchName = head.Target()
	}

	ref := plumbing.NewHashReference(branchName, commitHash)
	if err := j.repo.Storer.SetReference(ref); err != nil {
		return Transaction{}, fmt.Errorf("failed to update HEAD: %w", err)
	}

	return Transaction{
		Id:      commitHash.String(),
		When:    sig.When,
		Author:  identity.String(),
		Message: message,
	}, nil
}
