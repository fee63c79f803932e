package db

import (
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/journal"
	"github.com/nickyhof/MemDB/op"
	"github.com/nickyhof/MemDB/sql"
	"github.com/nickyhof/MemDB/store"
)

// DefaultStatementCacheSize bounds the number of parsed statements kept per
// engine.
const DefaultStatementCacheSize = 256

// Engine executes statements against a store. It takes no locks: callers
// sharing a store across goroutines must serialise Execute calls.
type Engine struct {
	Store    *store.Store
	Journal  *journal.Journal
	Identity core.Identity

	statements *lru.Cache[string, sql.Statement]
}

// NewEngine returns an engine over st. jnl may be nil to disable the
// journal.
func NewEngine(st *store.Store, jnl *journal.Journal, identity core.Identity) *Engine {
	statements, _ := lru.New[string, sql.Statement](DefaultStatementCacheSize)

	return &Engine{
		Store:      st,
		Journal:    jnl,
		Identity:   identity,
		statements: statements,
	}
}

// parse returns the cached statement for query, parsing it on a miss.
// Statements are immutable so one parsed value serves every execution.
func (engine *Engine) parse(query string) (sql.Statement, error) {
	if statement, ok := engine.statements.Get(query); ok {
		return statement, nil
	}

	statement, err := sql.Parse(query)
	if err != nil {
		return nil, err
	}

	engine.statements.Add(query, statement)
	return statement, nil
}

func (engine *Engine) Execute(query string) (Result, error) {
	query = strings.TrimSpace(query)

	statement, err := engine.parse(query)
	if err != nil {
		return nil, err
	}

	return engine.execute(statement, query)
}

// ExecuteStatement runs an already parsed statement.
func (engine *Engine) ExecuteStatement(statement sql.Statement) (Result, error) {
	return engine.execute(statement, statement.Type().String())
}

// execute dispatches on the statement type. message becomes the journal
// commit message for writes.
func (engine *Engine) execute(statement sql.Statement, message string) (Result, error) {
	switch statement.Type() {
	case sql.SelectStatementType:
		return engine.executeSelectStatement(statement.(sql.SelectStatement))
	case sql.SelectJoinStatementType:
		return engine.executeSelectJoinStatement(statement.(sql.SelectJoinStatement))
	case sql.InsertStatementType:
		return engine.executeInsertStatement(statement.(sql.InsertStatement), message)
	case sql.UpdateStatementType:
		return engine.executeUpdateStatement(statement.(sql.UpdateStatement), message)
	case sql.DeleteStatementType:
		return engine.executeDeleteStatement(statement.(sql.DeleteStatement), message)
	case sql.CreateTableStatementType:
		return engine.executeCreateTableStatement(statement.(sql.CreateTableStatement), message)
	default:
		return nil, fmt.Errorf("%w: unsupported statement type %v", core.ErrUnrecognizedStatement, statement.Type())
	}
}

func unknownColumn(table, column string) error {
	return fmt.Errorf("%w: %s.%s", core.ErrUnknownColumn, table, column)
}

// conditionPredicate matches rows whose column equals the condition value.
// The column must already be known to exist.
func conditionPredicate(condition sql.Condition) store.Predicate {
	return func(row core.Row) bool {
		ok, _ := row.Matches(condition.Column, condition.Value)
		return ok
	}
}

func (engine *Engine) executeCreateTableStatement(statement sql.CreateTableStatement, message string) (CommitResult, error) {
	startTime := time.Now()

	table := core.Table{Name: statement.Table, Columns: statement.Columns}
	txn, _, err := op.CreateTable(table, engine.Store, engine.Journal, engine.Identity, message)
	if err != nil {
		return CommitResult{}, err
	}

	return CommitResult{
		Transaction:      txn,
		TablesCreated:    1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     1,
	}, nil
}

func (engine *Engine) executeInsertStatement(statement sql.InsertStatement, message string) (CommitResult, error) {
	startTime := time.Now()

	tableOp, err := op.GetTable(statement.Table, engine.Store, engine.Journal)
	if err != nil {
		return CommitResult{}, err
	}

	txn, err := tableOp.Insert(statement.Values, engine.Identity, message)
	if err != nil {
		return CommitResult{}, err
	}

	return CommitResult{
		Transaction:      txn,
		RecordsWritten:   1,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     1,
	}, nil
}

func (engine *Engine) executeUpdateStatement(statement sql.UpdateStatement, message string) (CommitResult, error) {
	startTime := time.Now()

	tableOp, err := op.GetTable(statement.Table, engine.Store, engine.Journal)
	if err != nil {
		return CommitResult{}, err
	}

	for _, column := range []string{statement.SetColumn, statement.Where.Column} {
		if !tableOp.HasColumn(column) {
			return CommitResult{}, unknownColumn(statement.Table, column)
		}
	}

	scanned := tableOp.Count()
	updated, txn, err := tableOp.Update(conditionPredicate(statement.Where), statement.SetColumn, statement.SetValue, engine.Identity, message)
	if err != nil {
		return CommitResult{}, err
	}

	return CommitResult{
		Transaction:      txn,
		RecordsUpdated:   updated,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     scanned,
	}, nil
}

func (engine *Engine) executeDeleteStatement(statement sql.DeleteStatement, message string) (CommitResult, error) {
	startTime := time.Now()

	tableOp, err := op.GetTable(statement.Table, engine.Store, engine.Journal)
	if err != nil {
		return CommitResult{}, err
	}

	if !tableOp.HasColumn(statement.Where.Column) {
		return CommitResult{}, unknownColumn(statement.Table, statement.Where.Column)
	}

	scanned := tableOp.Count()
	deleted, txn, err := tableOp.Delete(conditionPredicate(statement.Where), engine.Identity, message)
	if err != nil {
		return CommitResult{}, err
	}

	return CommitResult{
		Transaction:      txn,
		RecordsDeleted:   deleted,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     scanned,
	}, nil
}
