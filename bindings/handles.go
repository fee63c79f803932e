package main

import (
	"errors"
	"sync"

	"github.com/goccy/go-json"
	"github.com/nickyhof/MemDB"
	"github.com/nickyhof/MemDB/core"
	"github.com/nickyhof/MemDB/db"
)

var errInvalidHandle = errors.New("invalid handle")

// Handle is one open instance and the engine the foreign caller drives.
// The mutex serialises calls made through the same handle.
type Handle struct {
	mu       sync.Mutex
	instance *MemDB.Instance
	engine   *db.Engine
}

var (
	handlesMu  sync.Mutex
	handles    = make(map[int]*Handle)
	nextHandle = 1
)

// Response mirrors the server protocol for consistency
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type QueryResponse struct {
	Columns         []string   `json:"columns"`
	Data            [][]string `json:"data"`
	RecordsRead     int        `json:"records_read"`
	ExecutionTimeMs float64    `json:"execution_time_ms"`
	ExecutionOps    int        `json:"execution_ops"`
}

type CommitResponse struct {
	TablesCreated   int     `json:"tables_created,omitempty"`
	RecordsWritten  int     `json:"records_written,omitempty"`
	RecordsUpdated  int     `json:"records_updated,omitempty"`
	RecordsDeleted  int     `json:"records_deleted,omitempty"`
	Transaction     string  `json:"transaction,omitempty"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	ExecutionOps    int     `json:"execution_ops"`
}

func openHandle(journaled bool) (int, error) {
	instance, err := MemDB.OpenMemory(journaled)
	if err != nil {
		return 0, err
	}

	h := &Handle{
		instance: instance,
		engine: instance.Engine(core.Identity{
			Name:  "MemDB Python",
			Email: "python@memdb.local",
		}),
	}

	handlesMu.Lock()
	defer handlesMu.Unlock()

	handle := nextHandle
	nextHandle++
	handles[handle] = h
	return handle, nil
}

func closeHandle(handle int) {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	delete(handles, handle)
}

func lookupHandle(handle int) (*Handle, error) {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	h, ok := handles[handle]
	if !ok {
		return nil, errInvalidHandle
	}
	return h, nil
}

// execute runs query on the handle's engine and encodes the outcome.
func execute(handle int, query string) []byte {
	h, err := lookupHandle(handle)
	if err != nil {
		return encode(Response{Success: false, Error: err.Error()})
	}

	h.mu.Lock()
	result, err := h.engine.Execute(query)
	h.mu.Unlock()
	if err != nil {
		return encode(Response{Success: false, Error: err.Error()})
	}

	var resp Response
	switch r := result.(type) {
	case db.QueryResult:
		data, _ := json.Marshal(QueryResponse{
			Columns:         r.Columns,
			Data:            r.Data(),
			RecordsRead:     r.RecordsRead,
			ExecutionTimeMs: r.ExecutionTimeSec * 1000,
			ExecutionOps:    r.ExecutionOps,
		})
		resp = Response{Success: true, Type: "query", Result: data}

	case db.CommitResult:
		data, _ := json.Marshal(CommitResponse{
			TablesCreated:   r.TablesCreated,
			RecordsWritten:  r.RecordsWritten,
			RecordsUpdated:  r.RecordsUpdated,
			RecordsDeleted:  r.RecordsDeleted,
			Transaction:     r.Transaction.Id,
			ExecutionTimeMs: r.ExecutionTimeSec * 1000,
			ExecutionOps:    r.ExecutionOps,
		})
		resp = Response{Success: true, Type: "commit", Result: data}

	default:
		resp = Response{Success: true, Type: "unknown"}
	}

	return encode(resp)
}

func render(handle int, table string) (string, error) {
	h, err := lookupHandle(handle)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.instance.Store.Render(table)
}

func encode(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		return []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	return data
}
