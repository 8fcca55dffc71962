package record

import "fmt"

// NewColumnDefinition builds a column definition. The column id is
// allocated once from the table's bitmap and stays stable for the
// table's lifetime.
func NewColumnDefinition(columnId uint8, dataType DataType, name string) ColumnDefinition {
	return ColumnDefinition{
		columnId: columnId,
		dataType: dataType,
		name:     name,
	}
}

// ColumnDefinitionFromRawBytes decodes one entry body, the bytes after
// the entry's length prefix: column id, type id, then the name.
func ColumnDefinitionFromRawBytes(raw []byte) (ColumnDefinition, error) {
	if len(raw) < 2 {
		return ColumnDefinition{}, fmt.Errorf("column definition needs at least 2 bytes, got %d", len(raw))
	}

	dataType, err := DataTypeFromID(raw[1])
	if err != nil {
		return ColumnDefinition{}, err
	}

	return ColumnDefinition{
		columnId: raw[0],
		dataType: dataType,
		name:     string(raw[2:]),
	}, nil
}

func (c ColumnDefinition) ColumnID() uint8 {
	return c.columnId
}

func (c ColumnDefinition) DataType() DataType {
	return c.dataType
}

func (c ColumnDefinition) Name() string {
	return c.name
}

// ToRawBytes returns the wire form of the definition, a self length
// prefixed triple: total length, column id, type id, name bytes.
func (c ColumnDefinition) ToRawBytes() []byte {
	raw := make([]byte, 0, 3+len(c.name))
	raw = append(raw, byte(2+len(c.name)))
	raw = append(raw, c.columnId)
	raw = append(raw, c.dataType.TypeID())
	raw = append(raw, c.name...)

	return raw
}

// EncodeColumnDefinitions concatenates the wire form of every
// definition into one blob.
func EncodeColumnDefinitions(definitions []ColumnDefinition) []byte {
	blob := []byte{}
	for _, definition := range definitions {
		blob = append(blob, definition.ToRawBytes()...)
	}

	return blob
}

// DecodeColumnDefinitions walks a blob of self length prefixed entries.
func DecodeColumnDefinitions(blob []byte) ([]ColumnDefinition, error) {
	definitions := []ColumnDefinition{}

	for len(blob) > 0 {
		entryLen := int(blob[0])
		if entryLen < 2 || 1+entryLen > len(blob) {
			return nil, fmt.Errorf("column definition entry length %d is out of bounds", entryLen)
		}

		definition, err := ColumnDefinitionFromRawBytes(blob[1 : 1+entryLen])
		if err != nil {
			return nil, err
		}

		definitions = append(definitions, definition)
		blob = blob[1+entryLen:]
	}

	return definitions, nil
}

// ColumnDefinition is immutable once created. Schema changes are append
// only, so there is no rename and no width change.
type ColumnDefinition struct {
	columnId uint8
	dataType DataType
	name     string
}

// ColumnInfo is a requested column, before a column id is allocated.
type ColumnInfo struct {
	Name     string
	DataType DataType
}
