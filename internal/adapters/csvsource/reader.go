// Package csvsource loads trial records from delimited text files.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// Schema names the columns and labels of an input file.
type Schema struct {
	GroupColumn     string
	ConvertedColumn string
	UserIDColumn    string
	TotalAdsColumn  string
	DayColumn       string
	HourColumn      string
	TreatmentLabel  string
	ControlLabel    string
	Comma           rune
}

// DefaultSchema matches the marketing campaign export: an unnamed index
// column followed by "user id", "test group", "converted" and the exposure
// covariates.
func DefaultSchema() Schema {
	return Schema{
		GroupColumn:     "test group",
		ConvertedColumn: "converted",
		UserIDColumn:    "user id",
		TotalAdsColumn:  "total ads",
		DayColumn:       "most ads day",
		HourColumn:      "most ads hour",
		TreatmentLabel:  domain.DefaultTreatmentLabel,
		ControlLabel:    domain.DefaultControlLabel,
		Comma:           ',',
	}
}

type Reader struct {
	schema Schema
}

func NewReader(schema Schema) *Reader {
	if schema.Comma == 0 {
		schema.Comma = ','
	}
	return &Reader{schema: schema}
}

// ReadFile loads the dataset at path. The dataset is named after the file.
func (r *Reader) ReadFile(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return r.Read(f, filepath.Base(path))
}

// columns holds header positions; -1 means the optional column is absent.
type columns struct {
	group, converted, userID, totalAds, day, hour int
}

// Read parses a header row followed by one record per line. Columns are
// resolved by header name once, so their order does not matter and unknown
// columns (such as a leading index) are ignored.
func (r *Reader) Read(in io.Reader, name string) (*domain.Dataset, error) {
	cr := csv.NewReader(in)
	cr.Comma = r.schema.Comma
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.SchemaError{Line: 1, Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, parseError(err)
	}
	cols, err := r.resolve(header)
	if err != nil {
		return nil, err
	}

	ds := &domain.Dataset{Name: name}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := r.record(row, cols, line)
		if err != nil {
			return nil, err
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func (r *Reader) resolve(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	lookup := func(name string) int {
		if name == "" {
			return -1
		}
		if i, ok := index[name]; ok {
			return i
		}
		return -1
	}

	cols := columns{
		group:     lookup(r.schema.GroupColumn),
		converted: lookup(r.schema.ConvertedColumn),
		userID:    lookup(r.schema.UserIDColumn),
		totalAds:  lookup(r.schema.TotalAdsColumn),
		day:       lookup(r.schema.DayColumn),
		hour:      lookup(r.schema.HourColumn),
	}
	for _, req := range []struct {
		name string
		idx  int
	}{
		{r.schema.GroupColumn, cols.group},
		{r.schema.ConvertedColumn, cols.converted},
	} {
		if req.idx < 0 {
			return cols, &domain.SchemaError{Line: 1, Column: req.name, Err: errors.New("required column not found in header")}
		}
	}
	return cols, nil
}

func (r *Reader) record(row []string, cols columns, line int) (domain.TrialRecord, error) {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rec domain.TrialRecord

	group := field(cols.group)
	a, err := domain.ParseAssignment(group, r.schema.TreatmentLabel, r.schema.ControlLabel)
	if err != nil {
		return rec, &domain.SchemaError{Line: line, Column: r.schema.GroupColumn, Value: group, Err: err}
	}
	rec.Assignment = a

	raw := field(cols.converted)
	rec.Converted, err = ParseBool(raw)
	if err != nil {
		return rec, &domain.SchemaError{Line: line, Column: r.schema.ConvertedColumn, Value: raw, Err: err}
	}

	rec.UserID = field(cols.userID)
	rec.MostAdsDay = field(cols.day)

	if v := field(cols.totalAds); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return rec, &domain.SchemaError{Line: line, Column: r.schema.TotalAdsColumn, Value: v, Err: err}
		}
		rec.TotalAds = n
	}
	if v := field(cols.hour); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h < 0 || h > 23 {
			return rec, &domain.SchemaError{Line: line, Column: r.schema.HourColumn, Value: v, Err: errors.New("hour must be an integer in [0, 23]")}
		}
		rec.MostAdsHour = h
		rec.HasHour = true
	}
	return rec, nil
}

// ParseBool accepts the spellings pandas and most exporters produce.
func ParseBool(s string) (bool, error) {
	switch s {
	case "True", "true", "TRUE", "1":
		return true, nil
	case "False", "false", "FALSE", "0":
		return false, nil
	}
	return false, fmt.Errorf("malformed boolean %q", s)
}

func parseError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &domain.SchemaError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("failed to read dataset: %w", err)
}
