package record

import "fmt"

const INTEGER_TYPE_ID = 1

// DataType identifies the fixed width encoding of a column. Integer is
// the only type in the system, an unsigned byte value.
type DataType uint8

const (
	Integer DataType = INTEGER_TYPE_ID
)

// DataTypeFromID resolves the on-disk type id back to a data type.
func DataTypeFromID(typeId uint8) (DataType, error) {
	switch typeId {
	case INTEGER_TYPE_ID:
		return Integer, nil
	default:
		return 0, fmt.Errorf("unknown data type id %d", typeId)
	}
}

// DataTypeFromName resolves a type name from the command surface.
func DataTypeFromName(name string) (DataType, bool) {
	switch name {
	case "integer":
		return Integer, true
	default:
		return 0, false
	}
}

func (d DataType) TypeID() uint8 {
	return uint8(d)
}

// Size returns the encoded width of a value of this type in bytes.
func (d DataType) Size() int {
	switch d {
	case Integer:
		return 1
	default:
		return 0
	}
}

func (d DataType) String() string {
	switch d {
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(d))
	}
}
