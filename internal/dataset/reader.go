// Package dataset reads and writes the tabular pitch datasets.
// CSV is the interchange format; XLSX sources are read-only.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/strikezone/internal/contracts"
)

// ErrNoHeader is returned for a dataset without a header row
var ErrNoHeader = errors.New("dataset has no header row")

// Reader streams the rows of a dataset.
// Next returns io.EOF after the last row. Rows are padded to the header width.
type Reader interface {
	Header() []string
	Next() ([]string, error)
	Close() error
}

// Open picks a reader by file extension.
// A missing file is reported as *contracts.SourceNotFoundError.
func Open(path string) (Reader, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &contracts.SourceNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openXLSX(path)
	default:
		return openCSV(path)
	}
}

// Index returns the position of column name in header, or -1
func Index(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

// normalizeHeader trims cells and strips a UTF-8 BOM from the first one
func normalizeHeader(cells []string) []string {
	header := make([]string, len(cells))
	for i, c := range cells {
		if i == 0 {
			c = strings.TrimPrefix(c, "\ufeff")
		}
		header[i] = strings.TrimSpace(c)
	}
	return header
}

// fitRow pads short rows; longer rows are malformed
func fitRow(row []string, width, line int) ([]string, error) {
	switch {
	case len(row) == width:
		return row, nil
	case len(row) < width:
		padded := make([]string, width)
		copy(padded, row)
		return padded, nil
	default:
		return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(row), width)
	}
}

// csvReader reads comma-separated text
type csvReader struct {
	f      *os.File
	r      *csv.Reader
	header []string
	line   int
}

func openCSV(path string) (*csvReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	cr, err := newCSVReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cr.f = f
	return cr, nil
}

// NewCSVReader reads a dataset from any stream
func NewCSVReader(r io.Reader) (Reader, error) {
	return newCSVReader(r)
}

func newCSVReader(r io.Reader) (*csvReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	return &csvReader{r: cr, header: normalizeHeader(first), line: 1}, nil
}

func (c *csvReader) Header() []string {
	return c.header
}

func (c *csvReader) Next() ([]string, error) {
	row, err := c.r.Read()
	if err != nil {
		return nil, err
	}
	c.line++
	return fitRow(row, len(c.header), c.line)
}

func (c *csvReader) Close() error {
	if c.f == nil {
		return nil
	}
	return c.f.Close()
}

// SerialDater is implemented by readers whose date cells arrive as
// spreadsheet serial day numbers instead of text
type SerialDater interface {
	SerialYear(s string) (int, bool)
}

// YearParser returns the date parser for cells read from r.
// Text layouts are tried first; serial numbers only when r produces them.
func YearParser(r Reader) func(string) (int, bool) {
	sd, ok := r.(SerialDater)
	if !ok {
		return ParseYear
	}
	return func(s string) (int, bool) {
		if y, ok := ParseYear(s); ok {
			return y, true
		}
		return sd.SerialYear(s)
	}
}

// xlsxReader iterates the first sheet of a workbook.
// Cells are read as stored, not as displayed, so number formats never
// round values and dates come back as serial numbers.
type xlsxReader struct {
	f        *excelize.File
	rows     *excelize.Rows
	header   []string
	line     int
	date1904 bool
}

var rawCells = excelize.Options{RawCellValue: true}

func openXLSX(path string) (*xlsxReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, ErrNoHeader
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("rows %s: %w", path, err)
	}

	x := &xlsxReader{f: f, rows: rows}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		x.date1904 = *props.Date1904
	}
	if !rows.Next() {
		x.Close()
		return nil, ErrNoHeader
	}
	first, err := rows.Columns(rawCells)
	if err != nil {
		x.Close()
		return nil, fmt.Errorf("header: %w", err)
	}
	x.header = normalizeHeader(first)
	x.line = 1
	return x, nil
}

func (x *xlsxReader) Header() []string {
	return x.header
}

func (x *xlsxReader) Next() ([]string, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	x.line++
	row, err := x.rows.Columns(rawCells)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", x.line, err)
	}
	// excelize trims trailing empty cells
	return fitRow(row, len(x.header), x.line)
}

// SerialYear converts a date serial (days since the workbook epoch) to its year
func (x *xlsxReader) SerialYear(s string) (int, bool) {
	v, ok := ParseNumber(s)
	if !ok || v <= 0 {
		return 0, false
	}
	t, err := excelize.ExcelDateToTime(v, x.date1904)
	if err != nil {
		return 0, false
	}
	return t.Year(), true
}

func (x *xlsxReader) Close() error {
	var err error
	if x.rows != nil {
		err = x.rows.Close()
	}
	if cerr := x.f.Close(); err == nil {
		err = cerr
	}
	return err
}
