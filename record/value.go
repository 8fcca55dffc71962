package record

import (
	"fmt"
	"strconv"
)

// NewInteger builds an integer value, domain [0,255].
func NewInteger(integer uint8) Value {
	return Value{dataType: Integer, integer: integer}
}

// DecodeValue reads one fixed width value of the given type from raw.
func DecodeValue(dataType DataType, raw []byte) (Value, error) {
	if len(raw) != dataType.Size() {
		return Value{}, fmt.Errorf("%s value needs %d bytes, got %d", dataType, dataType.Size(), len(raw))
	}

	switch dataType {
	case Integer:
		return NewInteger(raw[0]), nil
	default:
		return Value{}, fmt.Errorf("cannot decode data type %s", dataType)
	}
}

func (v Value) DataType() DataType {
	return v.dataType
}

func (v Value) Integer() uint8 {
	return v.integer
}

// Encode returns the fixed width encoding of the value.
func (v Value) Encode() []byte {
	switch v.dataType {
	case Integer:
		return []byte{v.integer}
	default:
		return nil
	}
}

func (v Value) Equal(other Value) bool {
	return v.dataType == other.dataType && v.integer == other.integer
}

func (v Value) String() string {
	switch v.dataType {
	case Integer:
		return strconv.Itoa(int(v.integer))
	default:
		return ""
	}
}

// Value is a typed cell value.
type Value struct {
	dataType DataType
	integer  uint8
}
