package sql

import (
	"github.com/nickyhof/MemDB/core"
)

type StatementType int

const (
	SelectStatementType StatementType = iota
	SelectJoinStatementType
	InsertStatementType
	UpdateStatementType
	DeleteStatementType
	CreateTableStatementType
)

func (statementType StatementType) String() string {
	switch statementType {
	case SelectStatementType:
		return "SELECT"
	case SelectJoinStatementType:
		return "SELECT JOIN"
	case InsertStatementType:
		return "INSERT"
	case UpdateStatementType:
		return "UPDATE"
	case DeleteStatementType:
		return "DELETE"
	case CreateTableStatementType:
		return "CREATE TABLE"
	default:
		return "UNKNOWN"
	}
}

type Statement interface {
	Type() StatementType
}

// CountAll is the projection column produced by COUNT(*).
const CountAll = "COUNT(*)"

// Condition is a single column = literal equality.
type Condition struct {
	Column string
	Value  core.Value
}

type OrderByClause struct {
	Column     string
	Descending bool
}

// SelectStatement reads one table. An empty Columns list means *.
type SelectStatement struct {
	Table   string
	Columns []string
	Where   *Condition
	GroupBy string
	Having  *Condition
	OrderBy *OrderByClause
	Limit   *int
}

// SelectJoinStatement reads the inner equi-join of two tables. JoinLeft and
// JoinRight are the ON operands as written, usually "table.column".
type SelectJoinStatement struct {
	Table     string
	JoinTable string
	JoinLeft  string
	JoinRight string
	Columns   []string
	Where     *Condition
	OrderBy   *OrderByClause
	Limit     *int
}

type InsertStatement struct {
	Table  string
	Values []core.Value
}

type UpdateStatement struct {
	Table     string
	SetColumn string
	SetValue  core.Value
	Where     Condition
}

type DeleteStatement struct {
	Table string
	Where Condition
}

type CreateTableStatement struct {
	Table   string
	Columns []string
}

func (s SelectStatement) Type() StatementType {
	return SelectStatementType
}

func (s SelectStatement) Wildcard() bool {
	return len(s.Columns) == 0
}

func (s SelectJoinStatement) Type() StatementType {
	return SelectJoinStatementType
}

func (s SelectJoinStatement) Wildcard() bool {
	return len(s.Columns) == 0
}

func (s InsertStatement) Type() StatementType {
	return InsertStatementType
}

func (s UpdateStatement) Type() StatementType {
	return UpdateStatementType
}

func (s DeleteStatement) Type() StatementType {
	return DeleteStatementType
}

func (s CreateTableStatement) Type() StatementType {
	return CreateTableStatementType
}
