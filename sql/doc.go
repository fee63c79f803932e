// Package sql provides lexing and parsing for MemDB's command language.
//
// The package includes a lexer that tokenizes statements and a parser
// that produces one immutable Statement per input string.
//
// # Lexer Usage
//
//	lexer := sql.NewLexer("SELECT * FROM users")
//	for {
//	    token := lexer.NextToken()
//	    if token.Type == sql.EOF {
//	        break
//	    }
//	    fmt.Printf("Token: %s = %s\n", token.Type, token.Value)
//	}
//
// # Parser Usage
//
//	statement, err := sql.Parse(`SELECT * FROM users WHERE name = "Alice";`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Supported Statements
//
// The parser supports the following statement types:
//   - CreateTableStatement: CREATE TABLE t (a, b)
//   - InsertStatement:      INSERT INTO t VALUES (1, "x")
//   - SelectStatement:      SELECT cols FROM t [WHERE] [GROUP BY] [ORDER BY] [LIMIT] [HAVING]
//   - SelectJoinStatement:  SELECT cols FROM t JOIN u ON t.a = u.b [WHERE] [ORDER BY] [LIMIT]
//   - UpdateStatement:      UPDATE t SET a = 1 WHERE b = 2
//   - DeleteStatement:      DELETE FROM t WHERE a = 1
//
// Conditions are a single column = literal equality. Keywords are
// case-insensitive and the trailing semicolon is optional. Every parse
// failure wraps core.ErrUnrecognizedStatement.
package sql
