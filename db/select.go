package db

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/journal"
	"github.com/nickyhof/MemDB/op"
	"github.com/nickyhof/MemDB/sql"
)

// rowSet is an intermediate result: the column names rows are keyed by and
// the rows themselves.
type rowSet struct {
	columns []string
	rows    []core.Row
}

func (set rowSet) has(column string) bool {
	return slices.Contains(set.columns, column)
}

func (engine *Engine) executeSelectStatement(statement sql.SelectStatement) (QueryResult, error) {
	startTime := time.Now()

	tableOp, err := op.GetTable(statement.Table, engine.Store, engine.Journal)
	if err != nil {
		return QueryResult{}, err
	}

	columns := statement.Columns
	if statement.Wildcard() {
		columns = tableOp.Table.Columns
	}

	// Every column reference is checked against the table shape before the
	// scan so an empty table fails the same way a populated one does.
	if statement.Where != nil && !tableOp.HasColumn(statement.Where.Column) {
		return QueryResult{}, unknownColumn(statement.Table, statement.Where.Column)
	}
	for _, column := range columns {
		if column != sql.CountAll && !tableOp.HasColumn(column) {
			return QueryResult{}, unknownColumn(statement.Table, column)
		}
	}

	var matched []core.Row
	var filter func(core.Row) bool
	if statement.Where != nil {
		filter = conditionPredicate(*statement.Where)
	}
	for _, row := range tableOp.ScanWithFilter(filter) {
		matched = append(matched, row)
	}

	var result rowSet
	if statement.GroupBy != "" {
		if !tableOp.HasColumn(statement.GroupBy) {
			return QueryResult{}, unknownColumn(statement.Table, statement.GroupBy)
		}
		// groups partition every row of the table; WHERE does not narrow them
		matched = matched[:0]
		for _, row := range tableOp.Scan() {
			matched = append(matched, row)
		}
		result, err = groupRows(rowSet{columns: tableOp.Table.Columns, rows: matched}, statement.GroupBy, columns, statement.Having)
		if err != nil {
			return QueryResult{}, err
		}
		result, err = orderAndLimit(result, statement.Table, statement.OrderBy, statement.Limit)
	} else {
		result, err = orderAndLimit(rowSet{columns: tableOp.Table.Columns, rows: matched}, statement.Table, statement.OrderBy, statement.Limit)
		if err == nil {
			result, err = project(result, columns)
		}
		if err == nil && statement.Having != nil {
			result, err = filterRows(result, *statement.Having)
		}
	}
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Transaction:      engine.latestTransaction(),
		Columns:          result.columns,
		Rows:             result.rows,
		RecordsRead:      len(matched),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     tableOp.Count(),
	}, nil
}

func (engine *Engine) latestTransaction() journal.Transaction {
	if engine.Journal == nil {
		return journal.Transaction{}
	}
	return engine.Journal.Latest()
}

// orderAndLimit stable-sorts by the ORDER BY column and then truncates to
// LIMIT rows. Either clause may be absent.
func orderAndLimit(set rowSet, table string, orderBy *sql.OrderByClause, limit *int) (rowSet, error) {
	if orderBy != nil {
		if !set.has(orderBy.Column) {
			return rowSet{}, unknownColumn(table, orderBy.Column)
		}
		if err := sortRows(set.rows, orderBy.Column, orderBy.Descending); err != nil {
			return rowSet{}, err
		}
	}

	if limit != nil && *limit < len(set.rows) {
		set.rows = set.rows[:*limit]
	}

	return set, nil
}

// sortRows sorts in place. Rows with values of different kinds under column
// cannot be ordered and fail with ErrTypeMismatch.
func sortRows(rows []core.Row, column string, descending bool) error {
	keys := make([]core.Value, len(rows))
	for i, row := range rows {
		v, err := row.Get(column)
		if err != nil {
			return err
		}
		if i > 0 && v.Kind != keys[0].Kind {
			return fmt.Errorf("%w: cannot order %s values %s and %s",
				core.ErrTypeMismatch, column, keys[0].GoString(), v.GoString())
		}
		keys[i] = v
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		cmp, _ := keys[order[a]].Compare(keys[order[b]])
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})

	sorted := make([]core.Row, len(rows))
	for i, idx := range order {
		sorted[i] = rows[idx]
	}
	copy(rows, sorted)

	return nil
}

// project keeps the requested columns. COUNT(*) on its own collapses the
// set into a single row holding the row count.
func project(set rowSet, columns []string) (rowSet, error) {
	if slices.Contains(columns, sql.CountAll) {
		if len(columns) != 1 {
			return rowSet{}, fmt.Errorf("%w: %s needs GROUP BY when other columns are selected",
				core.ErrUnknownColumn, sql.CountAll)
		}
		count := core.NewRow([]string{sql.CountAll}, []core.Value{core.IntValue(int64(len(set.rows)))})
		return rowSet{columns: []string{sql.CountAll}, rows: []core.Row{count}}, nil
	}

	projected := rowSet{columns: columns, rows: make([]core.Row, 0, len(set.rows))}
	for _, row := range set.rows {
		p, err := row.Project(columns)
		if err != nil {
			return rowSet{}, err
		}
		projected.rows = append(projected.rows, p)
	}

	return projected, nil
}

// filterRows keeps rows matching condition. A column missing from the set
// fails with ErrUnknownColumn even when there are no rows.
func filterRows(set rowSet, condition sql.Condition) (rowSet, error) {
	if !set.has(condition.Column) {
		return rowSet{}, fmt.Errorf("%w: %s", core.ErrUnknownColumn, condition.Column)
	}

	kept := rowSet{columns: set.columns, rows: make([]core.Row, 0, len(set.rows))}
	for _, row := range set.rows {
		if ok, _ := row.Matches(condition.Column, condition.Value); ok {
			kept.rows = append(kept.rows, row)
		}
	}

	return kept, nil
}

// groupRows partitions set by the value of groupBy, in first-seen order.
// Each group yields one row: the key under groupBy, then every other
// requested column holding the number of rows in the group. HAVING is
// applied to those group rows.
func groupRows(set rowSet, groupBy string, columns []string, having *sql.Condition) (rowSet, error) {
	outColumns := []string{groupBy}
	for _, column := range columns {
		if column != groupBy && !slices.Contains(outColumns, column) {
			outColumns = append(outColumns, column)
		}
	}

	var keys []core.Value
	counts := make(map[core.Value]int64)
	for _, row := range set.rows {
		key, err := row.Get(groupBy)
		if err != nil {
			return rowSet{}, err
		}
		if _, seen := counts[key]; !seen {
			keys = append(keys, key)
		}
		counts[key]++
	}

	grouped := rowSet{columns: outColumns, rows: make([]core.Row, 0, len(keys))}
	for _, key := range keys {
		values := make([]core.Value, len(outColumns))
		values[0] = key
		for i := 1; i < len(values); i++ {
			values[i] = core.IntValue(counts[key])
		}
		grouped.rows = append(grouped.rows, core.NewRow(outColumns, values))
	}

	if having != nil {
		return filterRows(grouped, *having)
	}
	return grouped, nil
}

// joinOperand splits an ON operand into its table qualifier and column.
// The qualifier is empty when the operand is unqualified.
func joinOperand(operand string) (string, string) {
	if table, column, found := strings.Cut(operand, "."); found {
		return table, column
	}
	return "", operand
}

// resolveJoinColumn maps a column reference onto the qualified key of a
// joined row. Unqualified references must name a column of exactly one
// side.
func resolveJoinColumn(left, right *op.TableOp, reference string) (string, error) {
	table, column := joinOperand(reference)
	switch table {
	case left.Table.Name:
		if left.HasColumn(column) {
			return reference, nil
		}
	case right.Table.Name:
		if right.HasColumn(column) {
			return reference, nil
		}
	case "":
		inLeft, inRight := left.HasColumn(column), right.HasColumn(column)
		switch {
		case inLeft && inRight:
			return "", fmt.Errorf("%w: %s is ambiguous", core.ErrUnknownColumn, column)
		case inLeft:
			return left.Table.Name + "." + column, nil
		case inRight:
			return right.Table.Name + "." + column, nil
		}
	}
	return "", fmt.Errorf("%w: %s", core.ErrUnknownColumn, reference)
}

// joinColumns resolves the ON operands to a column of each table, accepting
// them written in either order.
func joinColumns(left, right *op.TableOp, joinLeft, joinRight string) (string, string, error) {
	leftTable, _ := joinOperand(joinLeft)
	rightTable, _ := joinOperand(joinRight)
	if leftTable == right.Table.Name && rightTable == left.Table.Name && left.Table.Name != right.Table.Name {
		joinLeft, joinRight = joinRight, joinLeft
	}

	leftTable, leftColumn := joinOperand(joinLeft)
	if (leftTable != "" && leftTable != left.Table.Name) || !left.HasColumn(leftColumn) {
		return "", "", fmt.Errorf("%w: %s", core.ErrUnknownColumn, joinLeft)
	}
	rightTable, rightColumn := joinOperand(joinRight)
	if (rightTable != "" && rightTable != right.Table.Name) || !right.HasColumn(rightColumn) {
		return "", "", fmt.Errorf("%w: %s", core.ErrUnknownColumn, joinRight)
	}

	return leftColumn, rightColumn, nil
}

func (engine *Engine) executeSelectJoinStatement(statement sql.SelectJoinStatement) (QueryResult, error) {
	startTime := time.Now()

	left, err := op.GetTable(statement.Table, engine.Store, engine.Journal)
	if err != nil {
		return QueryResult{}, err
	}
	// both sides would qualify to the same keys
	if statement.JoinTable == statement.Table {
		return QueryResult{}, fmt.Errorf("%w: %s joined with itself makes every %s.<column> ambiguous",
			core.ErrUnknownColumn, statement.Table, statement.Table)
	}
	right, err := op.GetTable(statement.JoinTable, engine.Store, engine.Journal)
	if err != nil {
		return QueryResult{}, err
	}

	leftColumn, rightColumn, err := joinColumns(left, right, statement.JoinLeft, statement.JoinRight)
	if err != nil {
		return QueryResult{}, err
	}

	var combinedColumns []string
	for _, column := range left.Table.Columns {
		combinedColumns = append(combinedColumns, left.Table.Name+"."+column)
	}
	for _, column := range right.Table.Columns {
		combinedColumns = append(combinedColumns, right.Table.Name+"."+column)
	}

	columns := combinedColumns
	if !statement.Wildcard() {
		columns = make([]string, 0, len(statement.Columns))
		for _, column := range statement.Columns {
			if column == sql.CountAll {
				columns = append(columns, column)
				continue
			}
			key, err := resolveJoinColumn(left, right, column)
			if err != nil {
				return QueryResult{}, err
			}
			columns = append(columns, key)
		}
	}

	var where *sql.Condition
	if statement.Where != nil {
		key, err := resolveJoinColumn(left, right, statement.Where.Column)
		if err != nil {
			return QueryResult{}, err
		}
		where = &sql.Condition{Column: key, Value: statement.Where.Value}
	}

	var orderBy *sql.OrderByClause
	if statement.OrderBy != nil {
		key, err := resolveJoinColumn(left, right, statement.OrderBy.Column)
		if err != nil {
			return QueryResult{}, err
		}
		orderBy = &sql.OrderByClause{Column: key, Descending: statement.OrderBy.Descending}
	}

	ops := 0
	joined := rowSet{columns: combinedColumns}
	for _, r1 := range left.Scan() {
		leftValue, err := r1.Get(leftColumn)
		if err != nil {
			return QueryResult{}, err
		}
		for _, r2 := range right.Scan() {
			ops++
			rightValue, err := r2.Get(rightColumn)
			if err != nil {
				return QueryResult{}, err
			}
			if !leftValue.Equal(rightValue) {
				continue
			}

			combined := r1.Qualify(left.Table.Name).Concat(r2.Qualify(right.Table.Name))
			if where != nil {
				if ok, _ := combined.Matches(where.Column, where.Value); !ok {
					continue
				}
			}
			joined.rows = append(joined.rows, combined)
		}
	}
	matched := len(joined.rows)

	result, err := orderAndLimit(joined, statement.Table, orderBy, statement.Limit)
	if err != nil {
		return QueryResult{}, err
	}
	result, err = project(result, columns)
	if err != nil {
		return QueryResult{}, err
	}

	return QueryResult{
		Transaction:      engine.latestTransaction(),
		Columns:          result.columns,
		Rows:             result.rows,
		RecordsRead:      matched,
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     ops,
	}, nil
}
