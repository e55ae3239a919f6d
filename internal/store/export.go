package store

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"ID", "Predicted Label", "Confidence", "Final Label", "Uploader", "Created At", "Image URL"}

// WriteCSV writes records as a flat table with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		final := ""
		if r.FinalLabel != nil {
			final = *r.FinalLabel
		}
		row := []string{
			r.ID.String(),
			r.PredictedLabel,
			strconv.FormatFloat(r.Confidence, 'f', -1, 64),
			final,
			r.UploaderName,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.ImageURL,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
