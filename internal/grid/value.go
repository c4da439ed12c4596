package grid

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies what a cell currently holds.
type Kind uint8

const (
	Empty Kind = iota
	Int
	Float
	Text
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Int:
		return "int"
	case Float:
		return "float"
	case Text:
		return "text"
	}
	return "unknown"
}

// Value is a single cell. The zero Value is an empty cell.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

func IntValue(n int64) Value     { return Value{kind: Int, i: n} }
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }
func TextValue(s string) Value   { return Value{kind: Text, s: s} }

// EmptyValue returns an empty cell; handy where a literal reads better than Value{}.
func EmptyValue() Value { return Value{} }

// OptionalInt maps a nil pointer to an empty cell.
func OptionalInt(p *int64) Value {
	if p == nil {
		return Value{}
	}
	return IntValue(*p)
}

func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell holds nothing at all.
func (v Value) IsEmpty() bool { return v.kind == Empty }

// IsBlank also treats an empty string as blank.
func (v Value) IsBlank() bool {
	return v.kind == Empty || (v.kind == Text && v.s == "")
}

// Text returns the string form of the cell as a spreadsheet would display it
// without number formatting. Empty cells yield "".
func (v Value) Text() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case Text:
		return v.s
	}
	return ""
}

// Number returns the numeric reading of the cell. Floats are truncated toward
// zero and text is accepted when it is an integer literal once surrounding
// whitespace is removed. ok is false for empty cells and anything else.
func (v Value) Number() (n int64, ok bool) {
	switch v.kind {
	case Int:
		return v.i, true
	case Float:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return 0, false
		}
		return int64(v.f), true
	case Text:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// IsZeroLike reports whether the cell reads as "nothing there" for frequency
// purposes: empty, numeric zero, "" or "0".
func (v Value) IsZeroLike() bool {
	switch v.kind {
	case Empty:
		return true
	case Int:
		return v.i == 0
	case Float:
		return v.f == 0
	case Text:
		return v.s == "" || v.s == "0"
	}
	return false
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Int:
		return v.i == o.i
	case Float:
		return v.f == o.f
	case Text:
		return v.s == o.s
	}
	return true
}

// Raw returns the payload as an interface value suitable for spreadsheet
// writers: nil, int64, float64 or string.
func (v Value) Raw() any {
	switch v.kind {
	case Int:
		return v.i
	case Float:
		return v.f
	case Text:
		return v.s
	}
	return nil
}

func (v Value) String() string {
	if v.kind == Empty {
		return "<empty>"
	}
	return v.Text()
}
