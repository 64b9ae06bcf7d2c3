package statement

import (
	"bytes"
	"encoding/csv"
)

// writeCSV exports the tabular body followed by the summary block. Documents
// without a table export their detail fields as label/value pairs.
func writeCSV(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if l.Table != nil {
		header := make([]string, 0, len(l.Table.Columns))
		for _, c := range l.Table.Columns {
			header = append(header, c.Header)
		}
		if err := w.Write(header); err != nil {
			return nil, err
		}
		if err := w.WriteAll(l.Table.Rows); err != nil {
			return nil, err
		}
		if len(l.Table.Footer) > 0 {
			if err := w.Write(l.Table.Footer); err != nil {
				return nil, err
			}
		}
		for _, f := range l.Summary {
			if err := w.Write(padRecord(len(header), f.Label, f.Value)); err != nil {
				return nil, err
			}
		}
	} else {
		if err := w.Write([]string{"Field", "Value"}); err != nil {
			return nil, err
		}
		for _, group := range [][]Field{l.Parties, l.Details} {
			for _, f := range group {
				if err := w.Write([]string{f.Label, f.Value}); err != nil {
					return nil, err
				}
			}
		}
		if l.Total != nil {
			if err := w.Write([]string{l.Total.Label, l.Total.Value}); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// padRecord widens a label/value pair to the table width so the file keeps
// a constant field count.
func padRecord(width int, values ...string) []string {
	if width < len(values) {
		width = len(values)
	}
	record := make([]string, width)
	copy(record, values)
	return record
}
