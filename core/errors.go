package core

import "errors"

var (
	ErrUnrecognizedStatement = errors.New("unrecognized statement")
	ErrDuplicateTable        = errors.New("table already exists")
	ErrUnknownTable          = errors.New("table does not exist")
	ErrColumnArityMismatch   = errors.New("column count does not match value count")
	ErrUnknownColumn         = errors.New("unknown column")
	ErrTypeMismatch          = errors.New("type mismatch")
)
