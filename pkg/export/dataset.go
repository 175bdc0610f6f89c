package export

import "errors"

// ErrNoHeaders is returned when a dataset without columns is rendered.
var ErrNoHeaders = errors.New("export: dataset has no headers")

// Dataset is tabular report content. Rows are keyed by header; missing keys render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Record projects row i onto the header order.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Headers))
	for col, header := range d.Headers {
		record[col] = d.Rows[i][header]
	}
	return record
}

func (d Dataset) check() error {
	if len(d.Headers) == 0 {
		return ErrNoHeaders
	}
	return nil
}
