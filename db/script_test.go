package db

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/store"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"single", "SELECT * FROM users;", []string{"SELECT * FROM users"}},
		{"no trailing semicolon", "SELECT * FROM users", []string{"SELECT * FROM users"}},
		{"several", "CREATE TABLE t (a);\nINSERT INTO t VALUES (1);", []string{"CREATE TABLE t (a)", "INSERT INTO t VALUES (1)"}},
		{"semicolon in string", `INSERT INTO t VALUES ('a;b');`, []string{`INSERT INTO t VALUES ('a;b')`}},
		{"comment", "-- setup\nCREATE TABLE t (a); -- trailing\n", []string{"CREATE TABLE t (a)"}},
		{"comment inside string", `INSERT INTO t VALUES ("--x");`, []string{`INSERT INTO t VALUES ("--x")`}},
		{"empty statements", ";;  ;\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitStatements(tt.content); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitStatements(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

const testScript = `
CREATE TABLE users (id, name);
INSERT INTO users VALUES (1, "Alice");
INSERT INTO users VALUES (2);
INSERT INTO users VALUES (2, "Bob");
`

func TestExecuteScript(t *testing.T) {
	engine := NewEngine(store.New(), nil, testIdentity)

	outcomes := engine.ExecuteScript(testScript)
	if len(outcomes) != 4 {
		t.Fatalf("Expected 4 outcomes, got %d", len(outcomes))
	}
	if !errors.Is(outcomes[2].Err, core.ErrColumnArityMismatch) {
		t.Errorf("Expected arity error for the third statement, got %v", outcomes[2].Err)
	}
	if outcomes[2].Result != nil {
		t.Errorf("A failed statement should carry no result")
	}
	if outcomes[3].Err != nil {
		t.Errorf("Statements after a failure should still run, got %v", outcomes[3].Err)
	}

	if n, _ := engine.Store.Len("users"); n != 2 {
		t.Errorf("Expected 2 rows, got %d", n)
	}
}

func swapOsOpen(t *testing.T, files map[string]string) {
	t.Helper()
	original := osOpen
	osOpen = func(path string) (io.ReadCloser, error) {
		content, ok := files[path]
		if !ok {
			return nil, errors.New("file not found: " + path)
		}
		return io.NopCloser(strings.NewReader(content)), nil
	}
	t.Cleanup(func() { osOpen = original })
}

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func swapOsCreate(t *testing.T) map[string]*bufferCloser {
	t.Helper()
	created := make(map[string]*bufferCloser)
	original := osCreate
	osCreate = func(path string) (io.WriteCloser, error) {
		buf := &bufferCloser{}
		created[path] = buf
		return buf, nil
	}
	t.Cleanup(func() { osCreate = original })
	return created
}

func TestImportScriptLocal(t *testing.T) {
	swapOsOpen(t, map[string]string{"/tmp/setup.sql": testScript})
	engine := NewEngine(store.New(), nil, testIdentity)

	for _, path := range []string{"/tmp/setup.sql", "file:///tmp/setup.sql"} {
		script, err := ReadScript(context.Background(), path, nil)
		if err != nil {
			t.Fatalf("ReadScript(%s) failed: %v", path, err)
		}
		if script != testScript {
			t.Errorf("ReadScript(%s) returned unexpected content", path)
		}
	}

	outcomes, err := engine.ImportScript(context.Background(), "/tmp/setup.sql", nil)
	if err != nil {
		t.Fatalf("ImportScript failed: %v", err)
	}
	if len(outcomes) != 4 {
		t.Errorf("Expected 4 outcomes, got %d", len(outcomes))
	}

	if _, err := engine.ImportScript(context.Background(), "/tmp/missing.sql", nil); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestReadScriptHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/setup.sql" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, testScript)
	}))
	defer server.Close()

	script, err := ReadScript(context.Background(), server.URL+"/setup.sql", nil)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if script != testScript {
		t.Errorf("Unexpected script: %q", script)
	}

	if _, err := ReadScript(context.Background(), server.URL+"/missing.sql", nil); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected a 404 error, got %v", err)
	}
}

func TestExportTable(t *testing.T) {
	created := swapOsCreate(t)
	engine := setupTestEngine(t)

	n, err := engine.ExportTable(context.Background(), "users", "/tmp/users.txt", nil)
	if err != nil {
		t.Fatalf("ExportTable failed: %v", err)
	}

	out, ok := created["/tmp/users.txt"]
	if !ok {
		t.Fatal("Expected /tmp/users.txt to be created")
	}
	want := "id | name\n1 | Alice\n2 | Bob\n"
	if out.String() != want {
		t.Errorf("Exported %q, want %q", out.String(), want)
	}
	if n != len(want) {
		t.Errorf("Reported %d bytes, want %d", n, len(want))
	}
	if !out.closed {
		t.Error("Writer was not closed")
	}

	if _, err := engine.ExportTable(context.Background(), "missing", "/tmp/x.txt", nil); !errors.Is(err, core.ErrUnknownTable) {
		t.Errorf("Expected ErrUnknownTable, got %v", err)
	}
	if _, err := engine.ExportTable(context.Background(), "users", "https://example.com/users.txt", nil); err == nil {
		t.Error("Expected writing over HTTP to fail")
	}
}

func TestDetectScheme(t *testing.T) {
	tests := map[string]urlScheme{
		"s3://bucket/key":     schemeS3,
		"S3://bucket/key":     schemeS3,
		"https://example.com": schemeHTTPS,
		"http://example.com":  schemeHTTP,
		"file:///tmp/a.sql":   schemeFile,
		"/tmp/a.sql":          schemeLocal,
		"a.sql":               schemeLocal,
	}
	for path, want := range tests {
		if got := detectScheme(path); got != want {
			t.Errorf("detectScheme(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://data/scripts/setup.sql")
	if err != nil {
		t.Fatalf("parseS3URL failed: %v", err)
	}
	if bucket != "data" || key != "scripts/setup.sql" {
		t.Errorf("Got bucket %q key %q", bucket, key)
	}

	for _, bad := range []string{"s3://bucket", "s3://bucket/", "s3:///key"} {
		if _, _, err := parseS3URL(bad); err == nil {
			t.Errorf("parseS3URL(%q) should fail", bad)
		}
	}
}
