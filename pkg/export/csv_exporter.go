package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders datasets as delimited text. The zero value uses commas.
type CSVExporter struct {
	Comma rune
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{Comma: ','}
}

// Render writes the header line followed by every record. The title is not part of CSV output.
func (e *CSVExporter) Render(data Dataset, _ string) ([]byte, error) {
	if err := data.check(); err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for i := range data.Rows {
		records = append(records, data.Record(i))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if e.Comma != 0 {
		w.Comma = e.Comma
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}
