package core

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

type ValueKind int

const (
	IntKind ValueKind = iota
	StringKind
)

func (kind ValueKind) String() string {
	switch kind {
	case IntKind:
		return "INT"
	case StringKind:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Value is a scalar cell: either a signed integer or a text string.
// The zero Value is the integer 0.
type Value struct {
	Kind ValueKind
	Int  int64
	Str  string
}

func IntValue(i int64) Value {
	return Value{Kind: IntKind, Int: i}
}

func StringValue(s string) Value {
	return Value{Kind: StringKind, Str: s}
}

// CastLiteral converts a literal token into a Value. Quoted tokens become
// strings with the quotes stripped, digit runs become integers and anything
// else is kept as a bare string.
func CastLiteral(token string) Value {
	if len(token) >= 2 {
		first, last := token[0], token[len(token)-1]
		if (first == '\'' || first == '"') && first == last {
			return StringValue(token[1 : len(token)-1])
		}
	}

	if isDigits(token) {
		if i, err := strconv.ParseInt(token, 10, 64); err == nil {
			return IntValue(i)
		}
	}

	return StringValue(token)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Equal reports whether both values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	if v.Kind == IntKind {
		return v.Int == other.Int
	}
	return v.Str == other.Str
}

// Compare orders two values of the same kind. Mixed kinds fail with
// ErrTypeMismatch.
func (v Value) Compare(other Value) (int, error) {
	if v.Kind != other.Kind {
		return 0, fmt.Errorf("%w: cannot compare %s %s with %s %s", ErrTypeMismatch, v.Kind, v, other.Kind, other)
	}

	switch v.Kind {
	case IntKind:
		switch {
		case v.Int < other.Int:
			return -1, nil
		case v.Int > other.Int:
			return 1, nil
		}
		return 0, nil
	default:
		switch {
		case v.Str < other.Str:
			return -1, nil
		case v.Str > other.Str:
			return 1, nil
		}
		return 0, nil
	}
}

func (v Value) String() string {
	if v.Kind == IntKind {
		return strconv.FormatInt(v.Int, 10)
	}
	return v.Str
}

// GoString renders the value the way it would be written as a literal.
func (v Value) GoString() string {
	if v.Kind == IntKind {
		return v.String()
	}
	return strconv.Quote(v.Str)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == IntKind {
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	}
	return json.Marshal(v.Str)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}

	i, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value %s: %w", data, err)
	}
	*v = IntValue(i)
	return nil
}
