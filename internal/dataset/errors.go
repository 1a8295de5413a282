package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArchive indicates the input could not be opened as a ZIP archive.
	ErrInvalidArchive = errors.New("invalid zip archive")
	// ErrNoCSVFound indicates the archive has no member ending in .csv.
	ErrNoCSVFound = errors.New("no csv file found in archive")
	// ErrMissingColumn is matched by every *MissingColumnError.
	ErrMissingColumn = errors.New("missing column")
	// ErrEmptyDataset indicates the CSV member could not be parsed into a table.
	ErrEmptyDataset = errors.New("empty dataset")
)

// MissingColumnError lists the columns a dataset or operation needed but did not find.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	if e == nil || len(e.Columns) == 0 {
		return ErrMissingColumn.Error()
	}
	if len(e.Columns) == 1 {
		return fmt.Sprintf("missing column: %s", e.Columns[0])
	}
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// Is lets errors.Is(err, ErrMissingColumn) match.
func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }
