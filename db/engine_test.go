package db

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/journal"
	"github.com/nickyhof/MemDB/sql"
	"github.com/nickyhof/MemDB/store"
)

var testIdentity = core.Identity{Name: "test", Email: "test@test.com"}

func setupTestEngine(t *testing.T) *Engine {
	t.Helper()

	engine := NewEngine(store.New(), nil, testIdentity)
	mustExecute(t, engine,
		`CREATE TABLE users (id, name);`,
		`INSERT INTO users VALUES (1, "Alice");`,
		`INSERT INTO users VALUES (2, "Bob");`,
		`CREATE TABLE orders (id, user_id, product);`,
		`INSERT INTO orders VALUES (1, 1, "Book");`,
		`INSERT INTO orders VALUES (2, 2, "Pen");`,
		`INSERT INTO orders VALUES (3, 1, "Notebook");`,
	)

	return engine
}

// setupPeopleEngine loads the users(id, name, age) table used for grouping
// and ordering.
func setupPeopleEngine(t *testing.T) *Engine {
	t.Helper()

	engine := NewEngine(store.New(), nil, testIdentity)
	mustExecute(t, engine,
		`CREATE TABLE users (id, name, age)`,
		`INSERT INTO users VALUES (1, 'Alice', 30)`,
		`INSERT INTO users VALUES (2, 'Bob', 25)`,
		`INSERT INTO users VALUES (3, 'Charlie', 30)`,
		`INSERT INTO users VALUES (4, 'David', 25)`,
	)

	return engine
}

func mustExecute(t *testing.T, engine *Engine, queries ...string) []Result {
	t.Helper()

	var results []Result
	for _, query := range queries {
		result, err := engine.Execute(query)
		if err != nil {
			t.Fatalf("Failed to execute %q: %v", query, err)
		}
		results = append(results, result)
	}
	return results
}

func query(t *testing.T, engine *Engine, q string) QueryResult {
	t.Helper()

	result, err := engine.Execute(q)
	if err != nil {
		t.Fatalf("Failed to execute %q: %v", q, err)
	}
	qr, ok := result.(QueryResult)
	if !ok {
		t.Fatalf("Expected QueryResult for %q, got %T", q, result)
	}
	return qr
}

func commit(t *testing.T, engine *Engine, q string) CommitResult {
	t.Helper()

	result, err := engine.Execute(q)
	if err != nil {
		t.Fatalf("Failed to execute %q: %v", q, err)
	}
	cr, ok := result.(CommitResult)
	if !ok {
		t.Fatalf("Expected CommitResult for %q, got %T", q, result)
	}
	return cr
}

func row(columns []string, values ...core.Value) core.Row {
	return core.NewRow(columns, values)
}

var (
	iv = core.IntValue
	sv = core.StringValue
)

func TestEngineSelect(t *testing.T) {
	engine := setupTestEngine(t)
	cols := []string{"id", "name"}

	qr := query(t, engine, `SELECT id, name FROM users;`)
	want := []core.Row{row(cols, iv(1), sv("Alice")), row(cols, iv(2), sv("Bob"))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}
	if !reflect.DeepEqual(qr.Columns, cols) {
		t.Errorf("Columns = %v, want %v", qr.Columns, cols)
	}
	if qr.RecordsRead != 2 {
		t.Errorf("Expected 2 records, got %d", qr.RecordsRead)
	}
}

func TestEngineSelectWithWhere(t *testing.T) {
	engine := setupTestEngine(t)

	tests := []struct {
		query string
		want  []core.Row
	}{
		{`SELECT * FROM users WHERE name = "Alice";`, []core.Row{row([]string{"id", "name"}, iv(1), sv("Alice"))}},
		{`SELECT id FROM users WHERE name = "Bob";`, []core.Row{row([]string{"id"}, iv(2))}},
		{`SELECT name FROM users WHERE id = 2`, []core.Row{row([]string{"name"}, sv("Bob"))}},
		// kind-sensitive equality: "1" is a string and never equals 1
		{`SELECT name FROM users WHERE id = '1'`, []core.Row{}},
		{`SELECT name FROM users WHERE name = "Nobody"`, []core.Row{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			qr := query(t, engine, tt.query)
			got := qr.Rows
			if got == nil {
				got = []core.Row{}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineInsertRoundTrip(t *testing.T) {
	engine := NewEngine(store.New(), nil, testIdentity)
	mustExecute(t, engine, `CREATE TABLE notes (id, body)`)

	cr := commit(t, engine, `INSERT INTO notes VALUES (7, 'hello world')`)
	if cr.RecordsWritten != 1 || cr.RowsAffected() != 1 {
		t.Errorf("Unexpected insert result: %+v", cr)
	}
	mustExecute(t, engine, `INSERT INTO notes VALUES (8, "second")`)

	qr := query(t, engine, `SELECT * FROM notes`)
	cols := []string{"id", "body"}
	want := []core.Row{row(cols, iv(7), sv("hello world")), row(cols, iv(8), sv("second"))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}
}

func TestEngineInsertBareLiterals(t *testing.T) {
	engine := NewEngine(store.New(), nil, testIdentity)
	mustExecute(t, engine,
		`CREATE TABLE users (id, name, score)`,
		`INSERT INTO users VALUES (5, Eve, -3)`,
		`INSERT INTO users VALUES (6, a-b, 3.5)`,
	)

	qr := query(t, engine, `SELECT name, score FROM users WHERE score = -3`)
	cols := []string{"name", "score"}
	want := []core.Row{row(cols, sv("Eve"), sv("-3"))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}

	qr = query(t, engine, `SELECT id FROM users WHERE name = a-b`)
	if len(qr.Rows) != 1 || !reflect.DeepEqual(qr.Rows[0], row([]string{"id"}, iv(6))) {
		t.Errorf("Unexpected rows %v", qr.Rows)
	}
}

func TestEngineJoin(t *testing.T) {
	engine := setupTestEngine(t)
	cols := []string{"users.id", "orders.product"}
	want := []core.Row{
		row(cols, iv(1), sv("Book")),
		row(cols, iv(1), sv("Notebook")),
		row(cols, iv(2), sv("Pen")),
	}

	for _, q := range []string{
		`SELECT users.id, orders.product FROM users JOIN orders ON users.id = orders.user_id;`,
		`SELECT users.id, orders.product FROM users INNER JOIN orders ON orders.user_id = users.id`,
		`SELECT users.id, product FROM users JOIN orders ON users.id = orders.user_id`,
	} {
		qr := query(t, engine, q)
		if !reflect.DeepEqual(qr.Rows, want) {
			t.Errorf("%s:\nRows = %v\nwant %v", q, qr.Rows, want)
		}
	}
}

func TestEngineJoinWildcardAndWhere(t *testing.T) {
	engine := setupTestEngine(t)

	qr := query(t, engine, `SELECT * FROM users JOIN orders ON users.id = orders.user_id WHERE orders.product = "Pen"`)
	cols := []string{"users.id", "users.name", "orders.id", "orders.user_id", "orders.product"}
	want := []core.Row{row(cols, iv(2), sv("Bob"), iv(2), iv(2), sv("Pen"))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}
	if !reflect.DeepEqual(qr.Columns, cols) {
		t.Errorf("Columns = %v, want %v", qr.Columns, cols)
	}
}

func TestEngineJoinOrderAndLimit(t *testing.T) {
	engine := setupTestEngine(t)

	qr := query(t, engine, `SELECT orders.product FROM users JOIN orders ON users.id = orders.user_id ORDER BY orders.product DESC LIMIT 2`)
	cols := []string{"orders.product"}
	want := []core.Row{row(cols, sv("Pen")), row(cols, sv("Notebook"))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}
}

func TestEngineJoinRowCount(t *testing.T) {
	engine := setupTestEngine(t)

	usersCount := len(query(t, engine, `SELECT * FROM users`).Rows)
	ordersCount := len(query(t, engine, `SELECT * FROM orders`).Rows)

	qr := query(t, engine, `SELECT * FROM users JOIN orders ON users.id = orders.id`)
	if len(qr.Rows) > usersCount*ordersCount {
		t.Errorf("Join produced %d rows, more than %d x %d", len(qr.Rows), usersCount, ordersCount)
	}
	// users 1 and 2 pair with orders 1 and 2
	if len(qr.Rows) != 2 {
		t.Errorf("Expected 2 matching pairs, got %d", len(qr.Rows))
	}
}

func TestEngineJoinErrors(t *testing.T) {
	engine := setupTestEngine(t)

	tests := []struct {
		query string
		want  error
	}{
		{`SELECT * FROM users JOIN missing ON users.id = missing.id`, core.ErrUnknownTable},
		{`SELECT * FROM missing JOIN users ON missing.id = users.id`, core.ErrUnknownTable},
		{`SELECT * FROM users JOIN orders ON users.nope = orders.user_id`, core.ErrUnknownColumn},
		{`SELECT * FROM users JOIN orders ON other.id = orders.user_id`, core.ErrUnknownColumn},
		{`SELECT users.nope FROM users JOIN orders ON users.id = orders.user_id`, core.ErrUnknownColumn},
		{`SELECT id FROM users JOIN orders ON users.id = orders.user_id`, core.ErrUnknownColumn},
		{`SELECT * FROM users JOIN orders ON users.id = orders.user_id WHERE nope = 1`, core.ErrUnknownColumn},
		{`SELECT users.name FROM users JOIN users ON users.id = users.id`, core.ErrUnknownColumn},
	}

	for _, tt := range tests {
		if _, err := engine.Execute(tt.query); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.query, tt.want, err)
		}
	}
}

func TestEngineUpdate(t *testing.T) {
	engine := setupTestEngine(t)

	cr := commit(t, engine, `UPDATE users SET name = "Charlie" WHERE id = 2;`)
	if cr.RecordsUpdated != 1 {
		t.Fatalf("Expected 1 row updated, got %d", cr.RecordsUpdated)
	}

	qr := query(t, engine, `SELECT name FROM users WHERE id = 2`)
	want := []core.Row{row([]string{"name"}, sv("Charlie"))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}
}

func TestEngineUpdateNoMatch(t *testing.T) {
	engine := setupTestEngine(t)
	before := query(t, engine, `SELECT * FROM users`).Rows

	cr := commit(t, engine, `UPDATE users SET name = "Zed" WHERE id = 99`)
	if cr.RecordsUpdated != 0 {
		t.Errorf("Expected 0 rows updated, got %d", cr.RecordsUpdated)
	}

	after := query(t, engine, `SELECT * FROM users`).Rows
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Rows changed: before %v, after %v", before, after)
	}
}

func TestEngineDelete(t *testing.T) {
	engine := setupTestEngine(t)

	cr := commit(t, engine, `DELETE FROM users WHERE name = "Alice";`)
	if cr.RecordsDeleted != 1 {
		t.Fatalf("Expected 1 row deleted, got %d", cr.RecordsDeleted)
	}

	qr := query(t, engine, `SELECT * FROM users`)
	want := []core.Row{row([]string{"id", "name"}, iv(2), sv("Bob"))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}

	if got := query(t, engine, `SELECT * FROM users WHERE name = "Alice"`); len(got.Rows) != 0 {
		t.Errorf("Deleted row still selected: %v", got.Rows)
	}

	cr = commit(t, engine, `DELETE FROM users WHERE name = "Alice"`)
	if cr.RecordsDeleted != 0 {
		t.Errorf("Second delete removed %d rows", cr.RecordsDeleted)
	}
	if got := query(t, engine, `SELECT * FROM users`); !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("Second delete changed the table: %v", got.Rows)
	}
}

func TestEngineDeletePreservesOrder(t *testing.T) {
	engine := setupPeopleEngine(t)

	cr := commit(t, engine, `DELETE FROM users WHERE age = 30`)
	if cr.RecordsDeleted != 2 {
		t.Fatalf("Expected 2 rows deleted, got %d", cr.RecordsDeleted)
	}

	qr := query(t, engine, `SELECT name FROM users`)
	cols := []string{"name"}
	want := []core.Row{row(cols, sv("Bob")), row(cols, sv("David"))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}
}

func TestEngineOrderByAndLimit(t *testing.T) {
	engine := setupPeopleEngine(t)

	tests := []struct {
		query string
		want  []string
	}{
		// stable: equal ages keep insertion order
		{`SELECT name FROM users ORDER BY age`, []string{"Bob", "David", "Alice", "Charlie"}},
		{`SELECT name FROM users ORDER BY age ASC LIMIT 2`, []string{"Bob", "David"}},
		{`SELECT name FROM users ORDER BY age DESC`, []string{"Alice", "Charlie", "Bob", "David"}},
		{`SELECT name FROM users ORDER BY name DESC LIMIT 1`, []string{"David"}},
		{`SELECT name FROM users LIMIT 3`, []string{"Alice", "Bob", "Charlie"}},
		{`SELECT name FROM users LIMIT 10`, []string{"Alice", "Bob", "Charlie", "David"}},
		{`SELECT name FROM users LIMIT 0`, []string{}},
		{`SELECT name FROM users WHERE age = 30 ORDER BY id DESC`, []string{"Charlie", "Alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			qr := query(t, engine, tt.query)
			got := make([]string, 0, len(qr.Rows))
			for _, r := range qr.Rows {
				v, err := r.Get("name")
				if err != nil {
					t.Fatalf("Get failed: %v", err)
				}
				got = append(got, v.Str)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineGroupBy(t *testing.T) {
	engine := setupPeopleEngine(t)

	tests := []struct {
		query string
		cols  []string
		want  [][]core.Value
	}{
		{
			`SELECT age FROM users GROUP BY age HAVING age = 30`,
			[]string{"age"},
			[][]core.Value{{iv(30)}},
		},
		{
			`SELECT age, COUNT(*) FROM users GROUP BY age`,
			[]string{"age", "COUNT(*)"},
			[][]core.Value{{iv(30), iv(2)}, {iv(25), iv(2)}},
		},
		{
			// every non-key column holds the group's row count
			`SELECT age, name FROM users GROUP BY age`,
			[]string{"age", "name"},
			[][]core.Value{{iv(30), iv(2)}, {iv(25), iv(2)}},
		},
		{
			// groups partition the whole table even when WHERE is present
			`SELECT * FROM users WHERE name = 'Bob' GROUP BY age`,
			[]string{"age", "id", "name"},
			[][]core.Value{{iv(30), iv(2), iv(2)}, {iv(25), iv(2), iv(2)}},
		},
		{
			`SELECT name, age FROM users GROUP BY name ORDER BY name DESC LIMIT 2`,
			[]string{"name", "age"},
			[][]core.Value{{sv("David"), iv(1)}, {sv("Charlie"), iv(1)}},
		},
		{
			`SELECT age FROM users GROUP BY age ORDER BY age HAVING age = 25`,
			[]string{"age"},
			[][]core.Value{{iv(25)}},
		},
		{
			`SELECT age, COUNT(*) FROM users GROUP BY age HAVING age = 99`,
			[]string{"age", "COUNT(*)"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			qr := query(t, engine, tt.query)
			if !reflect.DeepEqual(qr.Columns, tt.cols) {
				t.Errorf("Columns = %v, want %v", qr.Columns, tt.cols)
			}
			var want []core.Row
			for _, values := range tt.want {
				want = append(want, row(tt.cols, values...))
			}
			if len(qr.Rows) != len(want) {
				t.Fatalf("got %d rows %v, want %v", len(qr.Rows), qr.Rows, want)
			}
			for n := range want {
				if !reflect.DeepEqual(qr.Rows[n], want[n]) {
					t.Errorf("row %d = %v, want %v", n, qr.Rows[n], want[n])
				}
			}
		})
	}
}

func TestEngineCountAll(t *testing.T) {
	engine := setupPeopleEngine(t)

	qr := query(t, engine, `SELECT COUNT(*) FROM users WHERE age = 25`)
	want := []core.Row{row([]string{sql.CountAll}, iv(2))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}

	qr = query(t, setupTestEngine(t), `SELECT COUNT(*) FROM users JOIN orders ON users.id = orders.user_id`)
	if v, _ := qr.Rows[0].Get(sql.CountAll); v.Int != 3 {
		t.Errorf("Join count = %v, want 3", v)
	}
}

func TestEngineHavingWithoutGroupBy(t *testing.T) {
	engine := setupPeopleEngine(t)

	qr := query(t, engine, `SELECT name, age FROM users HAVING age = 25`)
	cols := []string{"name", "age"}
	want := []core.Row{row(cols, sv("Bob"), iv(25)), row(cols, sv("David"), iv(25))}
	if !reflect.DeepEqual(qr.Rows, want) {
		t.Errorf("Rows = %v, want %v", qr.Rows, want)
	}

	if _, err := engine.Execute(`SELECT name FROM users HAVING age = 25`); !errors.Is(err, core.ErrUnknownColumn) {
		t.Errorf("Expected ErrUnknownColumn for a HAVING column outside the projection, got %v", err)
	}
}

func TestEngineErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"duplicate table", `CREATE TABLE users (a, b)`, core.ErrDuplicateTable},
		{"unknown table select", `SELECT * FROM missing`, core.ErrUnknownTable},
		{"unknown table insert", `INSERT INTO missing VALUES (1)`, core.ErrUnknownTable},
		{"unknown table update", `UPDATE missing SET a = 1 WHERE b = 2`, core.ErrUnknownTable},
		{"unknown table delete", `DELETE FROM missing WHERE a = 1`, core.ErrUnknownTable},
		{"too few values", `INSERT INTO users VALUES (1)`, core.ErrColumnArityMismatch},
		{"too many values", `INSERT INTO users VALUES (1, 'a', 2)`, core.ErrColumnArityMismatch},
		{"unknown projection", `SELECT nope FROM users`, core.ErrUnknownColumn},
		{"unknown where", `SELECT * FROM users WHERE nope = 1`, core.ErrUnknownColumn},
		{"unknown order by", `SELECT * FROM users ORDER BY nope`, core.ErrUnknownColumn},
		{"unknown group by", `SELECT id FROM users GROUP BY nope`, core.ErrUnknownColumn},
		{"unknown where with group by", `SELECT id FROM users WHERE nope = 1 GROUP BY id`, core.ErrUnknownColumn},
		{"unknown having", `SELECT id FROM users GROUP BY id HAVING nope = 1`, core.ErrUnknownColumn},
		{"count with columns", `SELECT id, COUNT(*) FROM users`, core.ErrUnknownColumn},
		{"unknown update set", `UPDATE users SET nope = 1 WHERE id = 1`, core.ErrUnknownColumn},
		{"unknown update where", `UPDATE users SET name = 'x' WHERE nope = 1`, core.ErrUnknownColumn},
		{"unknown delete where", `DELETE FROM users WHERE nope = 1`, core.ErrUnknownColumn},
		{"unrecognized", `DROP TABLE users`, core.ErrUnrecognizedStatement},
		{"compound where", `SELECT * FROM users WHERE id = 1 AND name = 'Bob'`, core.ErrUnrecognizedStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := setupTestEngine(t)
			if _, err := engine.Execute(tt.query); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEngineUnknownColumnOnEmptyTable(t *testing.T) {
	engine := NewEngine(store.New(), nil, testIdentity)
	mustExecute(t, engine, `CREATE TABLE empty (a, b)`)

	for _, q := range []string{
		`SELECT c FROM empty`,
		`SELECT * FROM empty WHERE c = 1`,
		`SELECT a FROM empty ORDER BY c`,
	} {
		if _, err := engine.Execute(q); !errors.Is(err, core.ErrUnknownColumn) {
			t.Errorf("%s: expected ErrUnknownColumn, got %v", q, err)
		}
	}
}

func TestEngineTypeMismatch(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, `INSERT INTO users VALUES ('x', "Zed")`)

	if _, err := engine.Execute(`SELECT * FROM users ORDER BY id`); !errors.Is(err, core.ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}

	// filtering on a mixed column is fine, it is only equality
	qr := query(t, engine, `SELECT name FROM users WHERE id = 'x'`)
	if len(qr.Rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(qr.Rows))
	}
}

func TestEngineFailedUpdateLeavesRows(t *testing.T) {
	engine := setupTestEngine(t)
	before := query(t, engine, `SELECT * FROM users`).Rows

	if _, err := engine.Execute(`UPDATE users SET nope = 1 WHERE id = 1`); err == nil {
		t.Fatal("Expected an error")
	}

	after := query(t, engine, `SELECT * FROM users`).Rows
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Failed update changed rows: %v", after)
	}
}

func TestEngineRowShapeInvariant(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine,
		`UPDATE users SET name = 5 WHERE id = 1`,
		`INSERT INTO users VALUES (3, "Cy")`,
	)

	for _, r := range query(t, engine, `SELECT * FROM users`).Rows {
		if !reflect.DeepEqual(r.Columns, []string{"id", "name"}) {
			t.Errorf("Row has columns %v", r.Columns)
		}
	}
}

func TestEngineStatementCache(t *testing.T) {
	engine := setupTestEngine(t)
	before := engine.statements.Len()

	for n := 0; n < 3; n++ {
		query(t, engine, `SELECT * FROM users`)
	}
	if got := engine.statements.Len(); got != before+1 {
		t.Errorf("Expected one new cache entry, got %d -> %d", before, got)
	}

	// a cached statement must not retain results between runs
	mustExecute(t, engine, `INSERT INTO users VALUES (3, "Cy")`)
	if got := query(t, engine, `SELECT * FROM users`); len(got.Rows) != 3 {
		t.Errorf("Expected 3 rows after insert, got %d", len(got.Rows))
	}

	if _, err := engine.Execute(`SELEKT nonsense`); err == nil {
		t.Error("Expected a parse error")
	}
	if engine.statements.Contains(`SELEKT nonsense`) {
		t.Error("Failed parses must not be cached")
	}
}

func TestEngineExecuteStatement(t *testing.T) {
	engine := setupTestEngine(t)

	result, err := engine.ExecuteStatement(sql.DeleteStatement{
		Table: "users",
		Where: sql.Condition{Column: "id", Value: core.IntValue(1)},
	})
	if err != nil {
		t.Fatalf("ExecuteStatement failed: %v", err)
	}
	if cr := result.(CommitResult); cr.RecordsDeleted != 1 {
		t.Errorf("Expected 1 row deleted, got %d", cr.RecordsDeleted)
	}
}

func TestEngineJournal(t *testing.T) {
	jnl, err := journal.New()
	if err != nil {
		t.Fatalf("Failed to create journal: %v", err)
	}
	engine := NewEngine(store.New(), jnl, testIdentity)

	create := commit(t, engine, `CREATE TABLE users (id, name)`)
	if create.Transaction.Id == "" {
		t.Fatal("CREATE TABLE should be journalled")
	}
	insert := commit(t, engine, `INSERT INTO users VALUES (1, 'Alice')`)
	update := commit(t, engine, `UPDATE users SET name = 'Alicia' WHERE id = 1`)
	noop := commit(t, engine, `DELETE FROM users WHERE id = 42`)
	if noop.Transaction.Id != "" {
		t.Errorf("A delete matching nothing should not be journalled")
	}

	qr := query(t, engine, `SELECT * FROM users`)
	if qr.Transaction.Id != update.Transaction.Id {
		t.Errorf("Select should report the latest transaction")
	}

	history := jnl.History()
	if len(history) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(history))
	}
	if history[0].Message != `UPDATE users SET name = 'Alicia' WHERE id = 1` {
		t.Errorf("Unexpected message: %q", history[0].Message)
	}
	if history[0].Author != testIdentity.String() {
		t.Errorf("Unexpected author: %q", history[0].Author)
	}

	old, err := jnl.TableAt(insert.Transaction.Id, "users")
	if err != nil {
		t.Fatalf("TableAt failed: %v", err)
	}
	want := []core.Row{row([]string{"id", "name"}, iv(1), sv("Alice"))}
	if !reflect.DeepEqual(old.CoreRows(), want) {
		t.Errorf("TableAt = %v, want %v", old.CoreRows(), want)
	}
}

func TestResultDisplay(t *testing.T) {
	engine := setupTestEngine(t)

	var buf bytes.Buffer
	query(t, engine, `SELECT id, name FROM users`).DisplayTo(&buf)
	out := buf.String()
	for _, want := range []string{"| id | name  |", "| 2  | Bob   |", "2 rows ("} {
		if !strings.Contains(out, want) {
			t.Errorf("Display output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	commit(t, engine, `DELETE FROM users WHERE id = 1`).DisplayTo(&buf)
	if !strings.HasPrefix(buf.String(), "1 record(s) deleted (") {
		t.Errorf("Unexpected commit display: %q", buf.String())
	}

	buf.Reset()
	commit(t, engine, `DELETE FROM users WHERE id = 1`).DisplayTo(&buf)
	if !strings.HasPrefix(buf.String(), "OK (") {
		t.Errorf("Unexpected commit display: %q", buf.String())
	}
}
