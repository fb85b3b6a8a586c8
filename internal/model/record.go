package model

import "strings"

// IDSeparator joins identifier columns into a record id.
const IDSeparator = "_"

// Record is one consumer or provider row projected to its configured columns.
type Record struct {
	ID     string
	Fields map[string]Value
}

// Get returns the value of a column; a missing column is null.
func (r Record) Get(column string) Value {
	return r.Fields[column]
}

// Has reports whether the record carries the column, null or not.
func (r Record) Has(column string) bool {
	_, ok := r.Fields[column]
	return ok
}

// JoinID builds a record id from identifier values, in column order.
func JoinID(parts []Value) string {
	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.Text()
	}
	return strings.Join(texts, IDSeparator)
}
