package record

// RowValues is one decoded row, normalized to the current schema. A nil
// entry means the column did not exist in the epoch the row belongs to.
type RowValues = []*Value

// NewRowResult builds a result set over the given column names.
func NewRowResult(columns []string, rows []RowValues) RowResult {
	return RowResult{columns: columns, rows: rows}
}

func (r RowResult) Columns() []string {
	return r.columns
}

func (r RowResult) Rows() []RowValues {
	return r.rows
}

func (r RowResult) Count() int {
	return len(r.rows)
}

// RowResult is an ordered set of decoded rows with their column names.
type RowResult struct {
	columns []string
	rows    []RowValues
}
