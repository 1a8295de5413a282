// Package dataset loads the student habits archive into an in-memory table
// and provides the column helpers the charts are drawn from.
package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names the loader and charts depend on.
const (
	ColSocialMedia = "social_media_hours"
	ColNetflix     = "netflix_hours"
	ColStudyHours  = "study_hours_per_day"
	ColExamScore   = "exam_score"
	ColPartTimeJob = "part_time_job"
	// ColTotalScreen is derived at load time.
	ColTotalScreen = "total_screen_time"
)

// RequiredColumns must be present in every loaded CSV.
var RequiredColumns = []string{ColSocialMedia, ColNetflix, ColStudyHours, ColExamScore, ColPartTimeJob}

// nanValues are treated as missing cells when parsing.
var nanValues = []string{"", "NA", "NaN", "nan", "N/A", "null", "<nil>"}

// Dataset is a loaded, validated table. It is read-only once returned.
type Dataset struct {
	Name string
	df   dataframe.DataFrame
}

// LoadFile opens a ZIP archive on disk and loads its first CSV member.
func LoadFile(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return LoadBytes(b)
}

// LoadBytes loads a dataset from an in-memory ZIP archive.
func LoadBytes(b []byte) (*Dataset, error) {
	return Load(bytes.NewReader(b), int64(len(b)))
}

// Load opens the ZIP archive, picks the first member ending in .csv,
// and parses it with ReadCSV.
func Load(r io.ReaderAt, size int64) (*Dataset, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	member := firstCSV(zr)
	if member == nil {
		return nil, ErrNoCSVFound
	}
	f, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidArchive, member.Name, err)
	}
	defer f.Close()
	return ReadCSV(member.Name, f)
}

func firstCSV(zr *zip.Reader) *zip.File {
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			return f
		}
	}
	return nil
}

// ReadCSV parses delimited text into a Dataset. It trims header whitespace,
// checks RequiredColumns and derives total_screen_time. A header with no data
// rows yields an empty Dataset.
func ReadCSV(name string, r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		header, ok := headerOnly(raw)
		if !ok {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrEmptyDataset, name, df.Err)
		}
		df = emptyFrame(header)
		if df.Err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrEmptyDataset, name, df.Err)
		}
	}
	df = blankColumnsAsFloat(df)
	names := df.Names()
	trimmed := make([]string, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, n := range names {
		t := strings.TrimSpace(n)
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("parse %s: duplicate column %q after trimming headers", name, t)
		}
		seen[t] = struct{}{}
		trimmed[i] = t
	}
	if err := df.SetNames(trimmed...); err != nil {
		return nil, fmt.Errorf("normalize headers: %w", err)
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := seen[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}

	social := df.Col(ColSocialMedia).Float()
	netflix := df.Col(ColNetflix).Float()
	total := make([]float64, len(social))
	for i := range social {
		total[i] = social[i] + netflix[i]
	}
	df = df.Mutate(series.New(total, series.Float, ColTotalScreen))
	if df.Err != nil {
		return nil, fmt.Errorf("derive %s: %w", ColTotalScreen, df.Err)
	}
	return &Dataset{Name: name, df: df}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.df.Nrow() }

// Columns returns the column names in dataset order.
func (d *Dataset) Columns() []string { return d.df.Names() }

// Has reports whether the column exists.
func (d *Dataset) Has(col string) bool {
	for _, n := range d.df.Names() {
		if n == col {
			return true
		}
	}
	return false
}

// Float returns a column as float64 values; missing or non-numeric cells are NaN.
func (d *Dataset) Float(col string) ([]float64, error) {
	if !d.Has(col) {
		return nil, &MissingColumnError{Columns: []string{col}}
	}
	return d.df.Col(col).Float(), nil
}

// Strings returns a column as text; missing cells are "".
func (d *Dataset) Strings(col string) ([]string, error) {
	if !d.Has(col) {
		return nil, &MissingColumnError{Columns: []string{col}}
	}
	s := d.df.Col(col)
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out, nil
}

// WriteCSV encodes the dataset, derived column included. Floats use the
// shortest representation that parses back to the same value; missing cells
// are empty.
func (d *Dataset) WriteCSV(w io.Writer) error {
	names := d.df.Names()
	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = d.df.Col(n)
	}
	rec := make([]string, len(cols))
	for row := 0; row < d.Len(); row++ {
		for i, s := range cols {
			rec[i] = formatCell(s, row)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(s series.Series, i int) string {
	e := s.Elem(i)
	if e.IsNA() {
		return ""
	}
	if s.Type() != series.Float {
		return e.String()
	}
	out := strconv.FormatFloat(e.Float(), 'g', -1, 64)
	// keep whole floats typed as float on re-read
	if !strings.ContainsAny(out, ".eInf") {
		out += ".0"
	}
	return out
}

// headerOnly reports whether raw holds a single CSV record and returns it.
func headerOnly(raw []byte) ([]string, bool) {
	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil || len(records) != 1 || len(records[0]) == 0 {
		return nil, false
	}
	return records[0], true
}

// emptyFrame builds a zero-row frame with float columns named by header.
func emptyFrame(header []string) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, h := range header {
		cols[i] = series.New([]float64{}, series.Float, h)
	}
	return dataframe.New(cols...)
}

// blankColumnsAsFloat retypes columns with no values at all as float, so they
// count as numeric.
func blankColumnsAsFloat(df dataframe.DataFrame) dataframe.DataFrame {
	types := df.Types()
	for i, name := range df.Names() {
		if types[i] != series.String {
			continue
		}
		col := df.Col(name)
		blank := true
		for j := 0; j < col.Len(); j++ {
			if !col.Elem(j).IsNA() {
				blank = false
				break
			}
		}
		if !blank {
			continue
		}
		nans := make([]float64, col.Len())
		for j := range nans {
			nans[j] = math.NaN()
		}
		df = df.Mutate(series.New(nans, series.Float, name))
	}
	return df
}

// isMissing treats ±Inf like NaN: neither can be binned, fitted or plotted.
func isMissing(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
