package panel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MissingMarker is written for absent values
const MissingMarker = ""

// Valuer exposes a row's formatted column values
type Valuer interface {
	Value(col string) (string, bool)
}

// WriteCSV writes the header and one line per row. Absent values are
// written as MissingMarker.
func WriteCSV(w io.Writer, columns []string, rows []Valuer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	line := make([]string, len(columns))
	for i, row := range rows {
		for j, col := range columns {
			v, ok := row.Value(col)
			if !ok {
				v = MissingMarker
			}
			line[j] = v
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path, creating parent directories. The file is
// written to a temporary name first so a failed write leaves no partial output.
func WriteFile(path string, columns []string, rows []Valuer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, columns, rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// Rows adapts the panel records for writing
func (p *Panel) Rows() []Valuer {
	rows := make([]Valuer, len(p.Records))
	for i := range p.Records {
		rows[i] = &p.Records[i]
	}
	return rows
}

// Write writes the panel to path
func (p *Panel) Write(path string) error {
	return WriteFile(path, p.Columns, p.Rows())
}
