package dataset

import "fmt"

// DataFormatError reports a structural problem in the input file: a missing
// required column or a cell that cannot be read as the column's type.
type DataFormatError struct {
	Column string
	Row    int // 1-based data row; 0 for header problems
	Value  string
	Reason string
}

func (e *DataFormatError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("data format: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("data format: row %d, column %q: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
}
