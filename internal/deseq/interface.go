package deseq

// RecordParser is the interface for parsers that stream gene records.
type RecordParser interface {
	// Next reads the next gene record.
	// Returns nil, nil when there are no more records.
	Next() (*GeneRecord, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
