package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nickyhof/MemDB/core"
)

type Parser struct {
	lexer *Lexer
}

func NewParser(sql string) *Parser {
	lexer := NewLexer(sql)
	return &Parser{lexer: lexer}
}

// Parse parses a single statement.
func Parse(sql string) (Statement, error) {
	return NewParser(sql).Parse()
}

func unrecognized(expected string, got Token) error {
	return fmt.Errorf("%w: expected %s, got %s", core.ErrUnrecognizedStatement, expected, got)
}

func (parser *Parser) Parse() (Statement, error) {
	var (
		statement Statement
		err       error
	)

	token := parser.lexer.NextToken()
	switch token.Type {
	case Select:
		statement, err = ParseSelect(parser)
	case Create:
		statement, err = ParseCreateTable(parser)
	case Insert:
		statement, err = ParseInsert(parser)
	case Update:
		statement, err = ParseUpdate(parser)
	case Delete:
		statement, err = ParseDelete(parser)
	default:
		return nil, unrecognized("SELECT, CREATE TABLE, INSERT INTO, UPDATE or DELETE FROM", token)
	}
	if err != nil {
		return nil, err
	}

	if err := parser.expectEnd(parser.lexer.NextToken()); err != nil {
		return nil, err
	}
	return statement, nil
}

// expectEnd accepts an optional trailing semicolon followed by end of input.
func (parser *Parser) expectEnd(token Token) error {
	if token.Type == Semicolon {
		token = parser.lexer.NextToken()
	}
	if token.Type != EOF {
		return unrecognized("end of statement", token)
	}
	return nil
}

func (parser *Parser) expectTableName(after string) (string, error) {
	token := parser.lexer.NextToken()
	if token.Type != Identifier || strings.Contains(token.Value, ".") {
		return "", unrecognized("table name after "+after, token)
	}
	return token.Value, nil
}

func ParseSelect(parser *Parser) (Statement, error) {
	var selectStatement SelectStatement

	token := parser.lexer.NextToken()

	if token.Type == Wildcard {
		selectStatement.Columns = []string{}
		token = parser.lexer.NextToken()
	} else {
		for {
			column, err := parser.parseProjectionColumn(token)
			if err != nil {
				return nil, err
			}
			selectStatement.Columns = append(selectStatement.Columns, column)

			token = parser.lexer.NextToken()
			if token.Type != Comma {
				break
			}
			token = parser.lexer.NextToken()
		}
	}

	if token.Type != From {
		return nil, unrecognized("FROM", token)
	}

	table, err := parser.expectTableName("FROM")
	if err != nil {
		return nil, err
	}
	selectStatement.Table = table

	token = parser.lexer.NextToken()

	// JOIN turns the statement into a two-table select
	var join *SelectJoinStatement
	if token.Type == Inner {
		token = parser.lexer.NextToken()
		if token.Type != Join {
			return nil, unrecognized("JOIN after INNER", token)
		}
	}
	if token.Type == Join {
		join, err = parseJoin(parser, table)
		if err != nil {
			return nil, err
		}
		token = parser.lexer.NextToken()
	}

	if token.Type == Where {
		condition, err := ParseCondition(parser)
		if err != nil {
			return nil, err
		}
		selectStatement.Where = &condition
		token = parser.lexer.NextToken()
	}

	if token.Type == Group {
		token = parser.lexer.NextToken()
		if token.Type != By {
			return nil, unrecognized("BY after GROUP", token)
		}
		token = parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, unrecognized("column name in GROUP BY", token)
		}
		selectStatement.GroupBy = token.Value
		token = parser.lexer.NextToken()

		// HAVING is accepted right after GROUP BY as well as at the end
		if token.Type == Having {
			condition, err := ParseCondition(parser)
			if err != nil {
				return nil, err
			}
			selectStatement.Having = &condition
			token = parser.lexer.NextToken()
		}
	}

	if token.Type == Order {
		token = parser.lexer.NextToken()
		if token.Type != By {
			return nil, unrecognized("BY after ORDER", token)
		}
		token = parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, unrecognized("column name in ORDER BY", token)
		}
		orderByClause := OrderByClause{Column: token.Value}

		token = parser.lexer.NextToken()
		if token.Type == Asc {
			token = parser.lexer.NextToken()
		} else if token.Type == Desc {
			orderByClause.Descending = true
			token = parser.lexer.NextToken()
		}
		selectStatement.OrderBy = &orderByClause
	}

	if token.Type == Limit {
		token = parser.lexer.NextToken()
		if token.Type != Int {
			return nil, unrecognized("integer after LIMIT", token)
		}
		limit, err := strconv.Atoi(token.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid LIMIT %s", core.ErrUnrecognizedStatement, token.Value)
		}
		selectStatement.Limit = &limit
		token = parser.lexer.NextToken()
	}

	if token.Type == Having && selectStatement.Having == nil {
		condition, err := ParseCondition(parser)
		if err != nil {
			return nil, err
		}
		selectStatement.Having = &condition
		token = parser.lexer.NextToken()
	}

	if err := parser.expectEnd(token); err != nil {
		return nil, err
	}

	if join == nil {
		return selectStatement, nil
	}

	if selectStatement.GroupBy != "" || selectStatement.Having != nil {
		return nil, fmt.Errorf("%w: GROUP BY and HAVING are not supported with JOIN", core.ErrUnrecognizedStatement)
	}
	join.Columns = selectStatement.Columns
	join.Where = selectStatement.Where
	join.OrderBy = selectStatement.OrderBy
	join.Limit = selectStatement.Limit
	return *join, nil
}

// parseProjectionColumn accepts a column name or COUNT(*).
func (parser *Parser) parseProjectionColumn(token Token) (string, error) {
	switch token.Type {
	case Identifier:
		return token.Value, nil
	case Count:
		if parser.lexer.PeekToken().Type != ParenOpen {
			// a column that happens to be called "count"
			return token.Value, nil
		}
		parser.lexer.NextToken()
		if token = parser.lexer.NextToken(); token.Type != Wildcard {
			return "", unrecognized("* in COUNT()", token)
		}
		if token = parser.lexer.NextToken(); token.Type != ParenClose {
			return "", unrecognized("')' after COUNT(*", token)
		}
		return CountAll, nil
	default:
		return "", unrecognized("column name or *", token)
	}
}

func parseJoin(parser *Parser, table string) (*SelectJoinStatement, error) {
	joinTable, err := parser.expectTableName("JOIN")
	if err != nil {
		return nil, err
	}

	token := parser.lexer.NextToken()
	if token.Type != On {
		return nil, unrecognized("ON after JOIN table", token)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, unrecognized("column after ON", token)
	}
	left := token.Value

	token = parser.lexer.NextToken()
	if token.Type != Equals {
		return nil, unrecognized("= in JOIN ON condition", token)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, unrecognized("column after = in JOIN ON", token)
	}

	return &SelectJoinStatement{
		Table:     table,
		JoinTable: joinTable,
		JoinLeft:  left,
		JoinRight: token.Value,
	}, nil
}

// ParseCondition parses exactly one "column = literal" equality.
func ParseCondition(parser *Parser) (Condition, error) {
	token := parser.lexer.NextToken()
	if token.Type != Identifier {
		return Condition{}, unrecognized("column name in condition", token)
	}
	column := token.Value

	token = parser.lexer.NextToken()
	if token.Type != Equals {
		return Condition{}, unrecognized("= in condition", token)
	}

	value, err := parser.parseLiteral("value in condition")
	if err != nil {
		return Condition{}, err
	}

	if next := parser.lexer.PeekToken(); next.Type == And || next.Type == Or {
		return Condition{}, fmt.Errorf("%w: only a single equality condition is supported", core.ErrUnrecognizedStatement)
	}

	return Condition{Column: column, Value: value}, nil
}

// parseLiteral reads one value: a quoted string, or a bare run cast with
// core.CastLiteral.
func (parser *Parser) parseLiteral(what string) (core.Value, error) {
	token := parser.lexer.ReadLiteral()
	switch token.Type {
	case String:
		return core.StringValue(token.Value), nil
	case Literal:
		return core.CastLiteral(token.Value), nil
	default:
		return core.Value{}, unrecognized(what, token)
	}
}

func ParseCreateTable(parser *Parser) (Statement, error) {
	var createTableStatement CreateTableStatement

	token := parser.lexer.NextToken()
	if token.Type != TableIdentifier {
		return nil, unrecognized("TABLE after CREATE", token)
	}

	table, err := parser.expectTableName("TABLE")
	if err != nil {
		return nil, err
	}
	createTableStatement.Table = table

	token = parser.lexer.NextToken()
	if token.Type != ParenOpen {
		return nil, unrecognized("'(' after table name", token)
	}

	for {
		token = parser.lexer.NextToken()
		if token.Type != Identifier {
			return nil, unrecognized("column name", token)
		}
		createTableStatement.Columns = append(createTableStatement.Columns, token.Value)

		token = parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		} else if token.Type == ParenClose {
			break
		} else {
			return nil, unrecognized("',' or ')' in column list", token)
		}
	}

	return createTableStatement, nil
}

func ParseInsert(parser *Parser) (Statement, error) {
	var insertStatement InsertStatement

	token := parser.lexer.NextToken()
	if token.Type != Into {
		return nil, unrecognized("INTO after INSERT", token)
	}

	table, err := parser.expectTableName("INSERT INTO")
	if err != nil {
		return nil, err
	}
	insertStatement.Table = table

	token = parser.lexer.NextToken()
	if token.Type != Values {
		return nil, unrecognized("VALUES", token)
	}

	token = parser.lexer.NextToken()
	if token.Type != ParenOpen {
		return nil, unrecognized("'(' after VALUES", token)
	}

	for {
		value, err := parser.parseLiteral("value")
		if err != nil {
			return nil, err
		}
		insertStatement.Values = append(insertStatement.Values, value)

		token = parser.lexer.NextToken()
		if token.Type == Comma {
			continue
		} else if token.Type == ParenClose {
			break
		} else {
			return nil, unrecognized("',' or ')' in values list", token)
		}
	}

	return insertStatement, nil
}

func ParseUpdate(parser *Parser) (Statement, error) {
	var updateStatement UpdateStatement

	table, err := parser.expectTableName("UPDATE")
	if err != nil {
		return nil, err
	}
	updateStatement.Table = table

	token := parser.lexer.NextToken()
	if token.Type != Set {
		return nil, unrecognized("SET after table name", token)
	}

	token = parser.lexer.NextToken()
	if token.Type != Identifier {
		return nil, unrecognized("column name in SET clause", token)
	}
	updateStatement.SetColumn = token.Value

	token = parser.lexer.NextToken()
	if token.Type != Equals {
		return nil, unrecognized("'=' in SET clause", token)
	}

	value, err := parser.parseLiteral("value in SET clause")
	if err != nil {
		return nil, err
	}
	updateStatement.SetValue = value

	token = parser.lexer.NextToken()
	if token.Type != Where {
		return nil, unrecognized("WHERE", token)
	}

	condition, err := ParseCondition(parser)
	if err != nil {
		return nil, err
	}
	updateStatement.Where = condition

	return updateStatement, nil
}

func ParseDelete(parser *Parser) (Statement, error) {
	var deleteStatement DeleteStatement

	token := parser.lexer.NextToken()
	if token.Type != From {
		return nil, unrecognized("FROM after DELETE", token)
	}

	table, err := parser.expectTableName("FROM")
	if err != nil {
		return nil, err
	}
	deleteStatement.Table = table

	token = parser.lexer.NextToken()
	if token.Type != Where {
		return nil, unrecognized("WHERE", token)
	}

	condition, err := ParseCondition(parser)
	if err != nil {
		return nil, err
	}
	deleteStatement.Where = condition

	return deleteStatement, nil
}
