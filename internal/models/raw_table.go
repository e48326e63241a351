package models

// RawTable is an undecoded CSV source: its path, header and rows as read
type RawTable struct {
	Path   string
	Header []string
	Rows   [][]string
	// Encoding is the charset the file was decoded from
	Encoding string
}

// Cell returns the value at row i, column j, or "" when the row is short
func (t *RawTable) Cell(i, j int) string {
	row := t.Rows[i]
	if j < 0 || j >= len(row) {
		return ""
	}
	return row[j]
}
