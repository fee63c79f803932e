package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v6/plumbing/object"
)

// Transaction describes one journal commit.
type Transaction struct {
	Id      string
	When    time.Time
	Author  string // "Name <email>" format
	Message string
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("Transaction{Id: %s, When: %s, Author: %s}", transaction.Id, transaction.When, transaction.Author)
}

// Short returns the abbreviated commit id.
func (transaction Transaction) Short() string {
	if len(transaction.Id) > 7 {
		return transaction.Id[:7]
	}
	return transaction.Id
}

func transactionFromCommit(commit *object.Commit) Transaction {
	author := ""
	if commit.Author.Name != "" || commit.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email)
	}

	return Transaction{
		Id:      commit.Hash.String(),
		When:    commit.Committer.When,
		Author:  author,
		Message: strings.TrimSpace(commit.Message),
	}
}
