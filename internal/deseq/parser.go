// Package deseq provides parsing of DESeq2 differential expression result tables.
package deseq

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Standard DESeq2 result column names.
const (
	ColLog2FoldChange = "log2FoldChange"
	ColPadj           = "padj"
	ColBaseMean       = "baseMean"
	ColAttributes     = "Attributes"
)

// countColumnMarker selects sample count columns by header substring,
// matched case-insensitively.
const countColumnMarker = "countings"

// naTokens are cell values treated as missing rather than unparsable.
var naTokens = map[string]bool{
	"":    true,
	"NA":  true,
	"N/A": true,
	"NaN": true,
	"nan": true,
}

// ColumnIndices holds the indices of recognized result table columns.
// Optional columns that are absent hold -1.
type ColumnIndices struct {
	Identifier     int
	Log2FoldChange int
	Padj           int
	BaseMean       int
	Attributes     int
	Counts         []int
}

// Parser reads gene records from a DESeq2 results table.
type Parser struct {
	csv        *csv.Reader
	file       *os.File
	gzipReader *gzip.Reader
	delimiter  rune
	columns    ColumnIndices
	header     []string
	countNames []string

	// R-style tables carry an unnamed row-name column, so data rows are one
	// field longer than the header. The offset is resolved on the first row.
	shift    int
	shiftSet bool

	lineNumber int
	rowOrdinal int
	unparsable int
}

// NewParser creates a parser for the given file. Supports plain and gzipped
// tables; "-" reads from stdin. A delimiter of 0 auto-detects tab versus
// comma from the header line.
func NewParser(path string, delimiter rune) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin, delimiter)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results table: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes. EOF means an empty file, which the header
	// parse below reports.
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read results table: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek results table: %w", err)
	}

	var r io.Reader = file
	// Check for gzip magic number (0x1f, 0x8b)
	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r = p.gzipReader
	}

	if err := p.init(r, delimiter); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin or an
// uploaded request body).
func NewParserFromReader(r io.Reader, delimiter rune) (*Parser, error) {
	p := &Parser{}
	if err := p.init(r, delimiter); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) init(r io.Reader, delimiter rune) error {
	br := bufio.NewReaderSize(r, 64*1024)
	if delimiter == 0 {
		delimiter = detectDelimiter(br)
	}
	p.delimiter = delimiter

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	p.csv = cr

	return p.parseHeader()
}

// detectDelimiter sniffs the delimiter from the first non-comment line.
// Tab wins when present, matching DESeq2's tab-separated default output.
func detectDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(64 * 1024)
	for _, line := range strings.Split(string(peek), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.ContainsRune(line, '\t') {
			return '\t'
		}
		return ','
	}
	return '\t'
}

// parseHeader reads the header row and resolves column indices.
func (p *Parser) parseHeader() error {
	header, err := p.csv.Read()
	if err != nil {
		if err == io.EOF {
			return &ParseError{
				Line:    p.lineNumber,
				Message: "no header line found",
			}
		}
		return fmt.Errorf("read header: %w", err)
	}
	p.lineNumber, _ = p.csv.FieldPos(0)
	p.header = header

	return p.parseColumnIndices(header)
}

// parseColumnIndices resolves the header cells to column indices.
func (p *Parser) parseColumnIndices(header []string) error {
	p.columns = ColumnIndices{
		Identifier:     -1,
		Log2FoldChange: -1,
		Padj:           -1,
		BaseMean:       -1,
		Attributes:     -1,
	}

	for i, col := range header {
		col = strings.TrimSpace(col)
		switch col {
		case ColLog2FoldChange:
			p.columns.Log2FoldChange = i
			continue
		case ColPadj:
			p.columns.Padj = i
			continue
		case ColBaseMean:
			p.columns.BaseMean = i
			continue
		case ColAttributes:
			p.columns.Attributes = i
			continue
		}

		lower := strings.ToLower(col)
		switch lower {
		case "gene_id", "geneid", "id", "identifier", "feature":
			if p.columns.Identifier == -1 {
				p.columns.Identifier = i
			}
			continue
		}

		if strings.Contains(lower, countColumnMarker) {
			p.columns.Counts = append(p.columns.Counts, i)
			p.countNames = append(p.countNames, col)
		}
	}

	// R-style export where the row-name column header is an empty cell.
	if p.columns.Identifier == -1 && len(header) > 0 && strings.TrimSpace(header[0]) == "" {
		p.columns.Identifier = 0
	}

	if p.columns.Log2FoldChange == -1 {
		return &MissingColumnError{Column: ColLog2FoldChange}
	}
	if p.columns.Padj == -1 {
		return &MissingColumnError{Column: ColPadj}
	}

	return nil
}

// Next reads the next gene record from the table.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*GeneRecord, error) {
	fields, err := p.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return nil, &ParseError{
				Line:    csvErr.Line,
				Message: csvErr.Err.Error(),
			}
		}
		return nil, fmt.Errorf("read record line: %w", err)
	}
	p.lineNumber, _ = p.csv.FieldPos(0)
	p.rowOrdinal++

	// Data rows one field longer than the header carry R-style row names
	// in field 0, shifting every named column right by one.
	if !p.shiftSet {
		if len(fields) == len(p.header)+1 {
			p.shift = 1
		}
		p.shiftSet = true
	}

	return p.parseFields(fields), nil
}

// parseFields builds a GeneRecord from one data row. Row-level defects
// degrade individual cells to NaN rather than failing the row.
func (p *Parser) parseFields(fields []string) *GeneRecord {
	rec := &GeneRecord{
		Identifier:     p.identifier(fields),
		Log2FoldChange: p.floatField(fields, p.columns.Log2FoldChange),
		AdjustedPValue: p.floatField(fields, p.columns.Padj),
		BaseMean:       p.floatField(fields, p.columns.BaseMean),
	}

	if s, ok := p.field(fields, p.columns.Attributes); ok {
		rec.AttributesRaw = s
		rec.GeneName, rec.LocusTag = ParseAttributes(s)
	}

	if len(p.columns.Counts) > 0 {
		rec.Counts = make([]float64, len(p.columns.Counts))
		for i, ci := range p.columns.Counts {
			rec.Counts[i] = p.floatField(fields, ci)
		}
	}

	return rec
}

// identifier resolves the record identifier: a named identifier column if
// present, else the R-style row-name column, else the 1-based row ordinal.
func (p *Parser) identifier(fields []string) string {
	if s, ok := p.field(fields, p.columns.Identifier); ok {
		if id := strings.TrimSpace(s); id != "" {
			return id
		}
	}
	if p.shift == 1 && len(fields) > 0 {
		if id := strings.TrimSpace(fields[0]); id != "" {
			return id
		}
	}
	return strconv.Itoa(p.rowOrdinal)
}

// field returns the cell for a header column index, applying the row-name
// shift. ok is false for absent columns and short rows.
func (p *Parser) field(fields []string, idx int) (string, bool) {
	if idx < 0 {
		return "", false
	}
	idx += p.shift
	if idx >= len(fields) {
		return "", false
	}
	return fields[idx], true
}

// floatField parses a numeric cell. Missing cells and NA tokens become NaN;
// unparsable cells become NaN and are counted, never fatal.
func (p *Parser) floatField(fields []string, idx int) float64 {
	s, ok := p.field(fields, idx)
	if !ok {
		return math.NaN()
	}
	s = strings.TrimSpace(s)
	if naTokens[s] {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.unparsable++
		return math.NaN()
	}
	return v
}

// ReadAll consumes the parser and returns the complete dataset.
func (p *Parser) ReadAll() (*Dataset, error) {
	ds := &Dataset{
		CountColumns: p.CountColumns(),
		HasBaseMean:  p.columns.BaseMean >= 0,
	}
	for {
		rec, err := p.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		ds.Records = append(ds.Records, rec)
	}
	ds.UnparsableCells = p.unparsable
	return ds, nil
}

// Columns returns the resolved column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// CountColumns returns the header names of the sample count columns.
func (p *Parser) CountColumns() []string {
	return p.countNames
}

// Delimiter returns the delimiter in effect after auto-detection.
func (p *Parser) Delimiter() rune {
	return p.delimiter
}

// LineNumber returns the line number of the most recently read row.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// UnparsableCells returns the number of numeric cells that could not be
// parsed and were degraded to NaN.
func (p *Parser) UnparsableCells() int {
	return p.unparsable
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during table parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("table parse error at line %d: %s", e.Line, e.Message)
}

// MissingColumnError indicates a required column is absent from the header.
// This is fatal for the whole table.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found in header", e.Column)
}
