package db

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// SplitStatements splits a script on semicolons that are outside quoted
// strings. Text from "--" to the end of a line is a comment and dropped.
// Empty statements are skipped.
func SplitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := byte(0)

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if ch == '\'' || ch == '"' {
			if !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar {
				inString = false
			}
		}

		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
			continue
		}

		if !inString && ch == ';' {
			flush()
			continue
		}

		current.WriteByte(ch)
	}
	flush()

	return statements
}

// ReadScript loads a script from a local path, file://, http(s):// or
// s3:// URL.
func ReadScript(ctx context.Context, path string, cfg *S3Config) (string, error) {
	reader, err := openRemoteReader(ctx, path, cfg)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return string(content), nil
}

// ScriptOutcome is the result of one statement of a script. Exactly one of
// Result and Err is set.
type ScriptOutcome struct {
	Statement string
	Result    Result
	Err       error
}

// ExecuteScript runs every statement of script in order. A failing
// statement does not stop the ones after it.
func (engine *Engine) ExecuteScript(script string) []ScriptOutcome {
	statements := SplitStatements(script)
	outcomes := make([]ScriptOutcome, 0, len(statements))

	for _, statement := range statements {
		result, err := engine.Execute(statement)
		if err != nil {
			result = nil
		}
		outcomes = append(outcomes, ScriptOutcome{Statement: statement, Result: result, Err: err})
	}

	return outcomes
}

// ImportScript reads a script from path and runs it.
func (engine *Engine) ImportScript(ctx context.Context, path string, cfg *S3Config) ([]ScriptOutcome, error) {
	script, err := ReadScript(ctx, path, cfg)
	if err != nil {
		return nil, err
	}
	return engine.ExecuteScript(script), nil
}

// ExportTable writes the rendered table to a local path, file:// or s3://
// URL and returns the number of bytes written.
func (engine *Engine) ExportTable(ctx context.Context, table, path string, cfg *S3Config) (int, error) {
	rendered, err := engine.Store.Render(table)
	if err != nil {
		return 0, err
	}

	writer, err := openRemoteWriter(ctx, path, cfg)
	if err != nil {
		return 0, err
	}

	n, err := io.WriteString(writer, rendered+"\n")
	if err != nil {
		writer.Close()
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := writer.Close(); err != nil {
		return n, err
	}

	return n, nil
}
