package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVRenderer writes the table with a header row. Summary fields follow
// after an empty line as label,value pairs.
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

func (e *CSVRenderer) Render(r Report) ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	header := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		header[i] = col.Label
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range r.Rows {
		record := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			record[i] = row[col.Key]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	if len(r.Summary) > 0 {
		writer.Flush()
		buf.WriteString("\n")
		for _, f := range r.Summary {
			if err := writer.Write([]string{f.Label, f.Value}); err != nil {
				return nil, fmt.Errorf("write csv summary: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
