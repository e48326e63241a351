package datasource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/charmap"

	"github.com/yourusername/fplpanel/internal/models"
)

const csvSourceName = "csv"

// Encodings reported on RawTable
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// DefaultGlob matches every CSV file below the root
const DefaultGlob = "**/*.csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource reads per-player CSV files from a directory tree
type CSVSource struct{}

// NewCSVSource creates a CSV table source
func NewCSVSource() *CSVSource {
	return &CSVSource{}
}

// Discover returns the files under root matching pattern, sorted. Patterns
// are relative to root and support ** for any number of directories.
func (s *CSVSource) Discover(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultGlob
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "invalid glob "+pattern, ErrInvalidData)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, "root "+root, err)
	}
	if !info.IsDir() {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, root+" is not a directory", ErrInvalidData)
	}

	matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeUnknown, "glob "+pattern, err)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadTable reads a CSV file into a raw table. Files that are not valid
// UTF-8 are decoded as Latin-1. Blank lines are dropped; ragged rows are
// kept as they are.
func (s *CSVSource) ReadTable(path string) (*models.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, "read "+path, err)
	}
	return ParseTable(path, data)
}

// ParseTable decodes CSV bytes into a raw table
func ParseTable(path string, data []byte) (*models.RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	encoding := EncodingUTF8
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "decode "+path, err)
		}
		data = decoded
		encoding = EncodingLatin1
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, path+" is empty", ErrInvalidData)
	}
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "header of "+path, err)
	}

	table := &models.RawTable{Path: path, Header: header, Encoding: encoding}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "parse "+path, err)
		}
		if blank(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ReadSchema returns the header row of a CSV file
func (s *CSVSource) ReadSchema(path string) ([]string, error) {
	table, err := s.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(table.Header) == 0 || blank(table.Header) {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, path+" has no header", ErrInvalidData)
	}
	return table.Header, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
