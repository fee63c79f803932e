package core

// Table describes a table's shape: its name and its ordered column list.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Identity identifies the author of journal entries.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (identity Identity) String() string {
	return identity.Name + " <" + identity.Email + ">"
}
