// Package resp implements the RESP (REdis Serialization Protocol) wire
// format: decoding frames from a buffered byte stream and encoding Values
// back onto one.
package resp

import "bytes"

// Kind identifies which of the five RESP frame types a Value holds.
type Kind byte

// The five RESP frame kinds, tagged by their leading wire byte.
const (
	SimpleString Kind = '+'
	ErrorKind    Kind = '-'
	Integer      Kind = ':'
	BulkString   Kind = '$'
	Array        Kind = '*'
)

// Value is a single RESP frame. Which fields are meaningful depends on Kind:
//
//   - SimpleString, ErrorKind: Str holds the payload.
//   - Integer: Int holds the value.
//   - BulkString: Bulk holds the payload, unless Null is set (a "$-1" nil).
//   - Array: Elems holds the elements, unless Null is set (a "*-1" nil).
type Value struct {
	Kind  Kind
	Str   []byte
	Int   int64
	Bulk  []byte
	Elems []Value
	Null  bool
}

// NewSimpleString returns a SimpleString Value.
func NewSimpleString(s string) Value {
	return Value{Kind: SimpleString, Str: []byte(s)}
}

// NewError returns an ErrorKind Value.
func NewError(s string) Value {
	return Value{Kind: ErrorKind, Str: []byte(s)}
}

// NewInteger returns an Integer Value.
func NewInteger(n int64) Value {
	return Value{Kind: Integer, Int: n}
}

// NewBulkString returns a BulkString Value wrapping b. A nil b is
// indistinguishable from an empty string this way; use NewNullBulkString for
// a RESP nil.
func NewBulkString(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Kind: BulkString, Bulk: b}
}

// NewBulkStringFromString is a convenience wrapper around NewBulkString.
func NewBulkStringFromString(s string) Value {
	return NewBulkString([]byte(s))
}

// NewNullBulkString returns the RESP nil bulk string ("$-1\r\n").
func NewNullBulkString() Value {
	return Value{Kind: BulkString, Null: true}
}

// NewArray returns an Array Value wrapping elems.
func NewArray(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: Array, Elems: elems}
}

// NewNullArray returns the RESP nil array ("*-1\r\n").
func NewNullArray() Value {
	return Value{Kind: Array, Null: true}
}

// OK is the conventional "+OK" reply.
var OK = NewSimpleString("OK")

// IsNil reports whether v is a null bulk string or null array.
func (v Value) IsNil() bool {
	return (v.Kind == BulkString || v.Kind == Array) && v.Null
}

// Equal reports whether v and other encode to the same frame.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind || v.Null != other.Null {
		return false
	}
	switch v.Kind {
	case SimpleString, ErrorKind:
		return bytes.Equal(v.Str, other.Str)
	case Integer:
		return v.Int == other.Int
	case BulkString:
		return v.Null || bytes.Equal(v.Bulk, other.Bulk)
	case Array:
		if v.Null {
			return true
		}
		if len(v.Elems) != len(other.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
