package model

import (
	"math"
	"strconv"
)

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	// KindNull is an absent cell.
	KindNull Kind = iota
	// KindString is free text.
	KindString
	// KindNumber is a numeric cell.
	KindNumber
)

// Value is a single spreadsheet cell: text, number, or null.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Null is the absent value.
var Null = Value{}

// String returns a text value. The empty string is null.
func String(s string) Value {
	if s == "" {
		return Null
	}
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value. NaN is null.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Null
	}
	return Value{kind: KindNumber, num: f}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the canonical text form. Null renders as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric value and whether the value is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Equal reports exact, kind-sensitive equality. Null never equals anything.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || v.kind != o.kind {
		return false
	}
	if v.kind == KindNumber {
		return v.num == o.num
	}
	return v.str == o.str
}

// Any returns the value as a plain Go scalar for writers: string, float64 or nil.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	default:
		return nil
	}
}
