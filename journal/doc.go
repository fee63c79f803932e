/*
Package journal records every mutating statement as a commit in an in-memory
git repository.

Each commit carries the statement text as its message and a tree holding one
JSON snapshot per table, at tables/<name>.json. Only the tables a statement
touched are rewritten; the rest are carried over from the parent commit.

	jnl, _ := journal.New()
	txn, _ := jnl.Record(identity, "INSERT INTO users VALUES (1, 'Alice')", snapshot)
	old, _ := jnl.TableAt(txn.Id, "users")

Nothing is ever written to disk: the object store and the worktree both live
in memory and disappear with the process.
*/
package journal
