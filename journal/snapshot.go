package journal

import (
	"github.com/goccy/go-json"
	"github.com/nickyhof/MemDB/core"
)

// Snapshot is the serialised state of one table.
type Snapshot struct {
	Table core.Table     `json:"table"`
	Rows  [][]core.Value `json:"rows"`
}

// NewSnapshot captures a table shape and its rows.
func NewSnapshot(table core.Table, rows []core.Row) Snapshot {
	snapshot := Snapshot{
		Table: table,
		Rows:  make([][]core.Value, 0, len(rows)),
	}
	for _, row := range rows {
		values := make([]core.Value, len(row.Values))
		copy(values, row.Values)
		snapshot.Rows = append(snapshot.Rows, values)
	}
	return snapshot
}

// CoreRows rebuilds the rows keyed by the table's columns.
func (snapshot Snapshot) CoreRows() []core.Row {
	rows := make([]core.Row, 0, len(snapshot.Rows))
	for _, values := range snapshot.Rows {
		rows = append(rows, core.NewRow(snapshot.Table.Columns, values))
	}
	return rows
}

func (snapshot Snapshot) path() string {
	return tablePath(snapshot.Table.Name)
}

func tablePath(name string) string {
	return tablesDir + "/" + name + ".json"
}

func (snapshot Snapshot) encode() ([]byte, error) {
	return json.Marshal(snapshot)
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}
