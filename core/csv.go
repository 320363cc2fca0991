package core

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// CSVRecord is implemented by types that can be exported as a CSV row.
type CSVRecord interface {
	CSVRow() []string
}

// WriteCSV writes header followed by one row per record.
func WriteCSV[T CSVRecord](w io.Writer, header []string, records []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, rec := range records {
		if err := cw.Write(rec.CSVRow()); err != nil {
			return errors.Wrap(err, "writing csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
