// Package main provides a TCP SQL server for MemDB.
package main

import (
	"strings"

	"github.com/goccy/go-json"
)

// Request represents a SQL query from the client.
type Request struct {
	Query string `json:"query"`
}

// Response represents the server's response to one line.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"` // "query", "commit", "auth" or "session"
	Session string          `json:"session,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// QueryResponse contains tabular query results.
type QueryResponse struct {
	Columns     []string   `json:"columns"`
	Data        [][]string `json:"data"`
	RecordsRead int        `json:"records_read"`
	TimeMs      float64    `json:"time_ms"`
}

// CommitResponse contains mutation operation results.
type CommitResponse struct {
	TablesCreated  int     `json:"tables_created,omitempty"`
	RecordsWritten int     `json:"records_written,omitempty"`
	RecordsUpdated int     `json:"records_updated,omitempty"`
	RecordsDeleted int     `json:"records_deleted,omitempty"`
	Transaction    string  `json:"transaction,omitempty"`
	TimeMs         float64 `json:"time_ms"`
}

// AuthResponse is returned after a successful AUTH command.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity"`
	ExpiresIn     int    `json:"expires_in,omitempty"`
}

// SessionResponse describes the connection, returned for SESSION.
type SessionResponse struct {
	Id            string `json:"id"`
	Name          string `json:"name"`
	Identity      string `json:"identity"`
	Authenticated bool   `json:"authenticated"`
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses a request line. A line holding a JSON object is read
// as a Request; anything else is taken as the raw query text.
func DecodeRequest(line []byte) (Request, error) {
	trimmed := strings.TrimSpace(string(line))
	if !strings.HasPrefix(trimmed, "{") {
		return Request{Query: trimmed}, nil
	}

	var req Request
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		return Request{}, err
	}
	req.Query = strings.TrimSpace(req.Query)
	return req, nil
}

func errorResponse(kind string, err error) Response {
	return Response{
		Success: false,
		Type:    kind,
		Error:   err.Error(),
	}
}

func resultResponse(kind string, v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse(kind, err)
	}
	return Response{
		Success: true,
		Type:    kind,
		Result:  data,
	}
}
