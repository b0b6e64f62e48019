package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// Writer writes records in the layout Reader expects, so an exported dataset
// can be imported again with the same schema.
type Writer struct {
	schema Schema
}

func NewWriter(schema Schema) *Writer {
	if schema.Comma == 0 {
		schema.Comma = ','
	}
	return &Writer{schema: schema}
}

func (w *Writer) Write(out io.Writer, records []domain.TrialRecord) error {
	cw := csv.NewWriter(out)
	cw.Comma = w.schema.Comma

	s := w.schema
	header := []string{s.UserIDColumn, s.GroupColumn, s.ConvertedColumn, s.TotalAdsColumn, s.DayColumn, s.HourColumn}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(header))
	for i, r := range records {
		switch r.Assignment {
		case domain.Treatment:
			row[1] = s.TreatmentLabel
		case domain.Control:
			row[1] = s.ControlLabel
		default:
			return fmt.Errorf("record %d: %w %q", i, domain.ErrInvalidAssignment, r.Assignment)
		}
		row[0] = r.UserID
		row[2] = "False"
		if r.Converted {
			row[2] = "True"
		}
		row[3] = strconv.Itoa(r.TotalAds)
		row[4] = r.MostAdsDay
		row[5] = ""
		if r.HasHour {
			row[5] = strconv.Itoa(r.MostAdsHour)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
