package db

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/journal"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	CommitResultType
)

type Result interface {
	Type() ResultType
	Display()
	DisplayTo(w io.Writer)
}

// QueryResult is returned by SELECT. Each row carries its own column names,
// which are table-qualified for joins.
type QueryResult struct {
	Transaction      journal.Transaction
	Columns          []string
	Rows             []core.Row
	RecordsRead      int
	ExecutionTimeSec float64
	ExecutionOps     int
}

// CommitResult is returned by CREATE TABLE, INSERT, UPDATE and DELETE.
// Transaction is empty when no journal is attached or nothing changed.
type CommitResult struct {
	Transaction      journal.Transaction
	TablesCreated    int
	RecordsWritten   int
	RecordsUpdated   int
	RecordsDeleted   int
	ExecutionTimeSec float64
	ExecutionOps     int
}

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result CommitResult) Type() ResultType {
	return CommitResultType
}

// Data renders every row as strings in column order.
func (result QueryResult) Data() [][]string {
	data := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		data[i] = row.Strings()
	}
	return data
}

// RowsAffected is the number of rows written, updated or deleted.
func (result CommitResult) RowsAffected() int {
	return result.RecordsWritten + result.RecordsUpdated + result.RecordsDeleted
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	switch {
	case secs < 0.001:
		return "<1ms"
	case secs < 1:
		return fmt.Sprintf("%dms", int(secs*1000))
	case secs < 10:
		return fmt.Sprintf("%.1fs", secs)
	case secs < 60:
		return fmt.Sprintf("%ds", int(secs))
	}

	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

func formatThroughput(secs float64, ops int) string {
	if secs <= 0 || ops <= 0 {
		return ""
	}
	rate := float64(ops) / secs
	switch {
	case rate >= 1000000:
		return fmt.Sprintf(", %.1fM ops/s", rate/1000000)
	case rate >= 1000:
		return fmt.Sprintf(", %.1fK ops/s", rate/1000)
	}
	return fmt.Sprintf(", %.0f ops/s", rate)
}

func (result QueryResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result CommitResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result QueryResult) Display() {
	result.DisplayTo(os.Stdout)
}

func (result QueryResult) DisplayTo(w io.Writer) {
	if len(result.Rows) > 0 {
		data := NewTable(w)
		data.Header(result.Columns)
		data.Bulk(result.Data())
		data.Render()
	}

	fmt.Fprintf(w, "%d rows (%s%s)\n", len(result.Rows), result.ExecutionTime(),
		formatThroughput(result.ExecutionTimeSec, result.ExecutionOps))
}

func (result CommitResult) Display() {
	result.DisplayTo(os.Stdout)
}

func (result CommitResult) DisplayTo(w io.Writer) {
	var parts []string

	if result.TablesCreated > 0 {
		parts = append(parts, fmt.Sprintf("%d table(s) created", result.TablesCreated))
	}
	if result.RecordsWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) written", result.RecordsWritten))
	}
	if result.RecordsUpdated > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) updated", result.RecordsUpdated))
	}
	if result.RecordsDeleted > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) deleted", result.RecordsDeleted))
	}
	if result.Transaction.Id != "" {
		parts = append(parts, "txn "+result.Transaction.Short())
	}

	throughput := formatThroughput(result.ExecutionTimeSec, result.ExecutionOps)
	if len(parts) == 0 {
		fmt.Fprintf(w, "OK (%s%s)\n", result.ExecutionTime(), throughput)
	} else {
		fmt.Fprintf(w, "%s (%s%s)\n", strings.Join(parts, ", "), result.ExecutionTime(), throughput)
	}
}
