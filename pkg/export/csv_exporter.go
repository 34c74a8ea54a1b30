package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	// BOM prefixes the output with a UTF-8 byte order mark so spreadsheet
	// tools detect the encoding of accented labels.
	BOM bool
}

// NewCSVExporter builds a CSV exporter that writes a byte order mark.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{BOM: true}
}

// Render produces CSV encoded bytes for the dataset. Cells missing from a row
// are written empty.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	if e.BOM {
		buf.Write(utf8BOM)
	}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
