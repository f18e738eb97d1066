// Package output writes pair records to a sink.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

// Document is the JSON shape of a run's output.
type Document struct {
	Pairs []model.PairRecord `json:"pairs"`
}

// Write renders records in the given format.
//
// FormatLines writes one "source<TAB>candidate" line per record.
// FormatJSON writes a single indented Document.
func Write(w io.Writer, format model.Format, records []model.PairRecord) error {
	switch format {
	case model.FormatLines:
		return writeLines(w, records)
	case model.FormatJSON:
		return writeJSON(w, records)
	default:
		return fmt.Errorf("unsupported output format %q", string(format))
	}
}

func writeLines(w io.Writer, records []model.PairRecord) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", r.Source, r.Candidate); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, records []model.PairRecord) error {
	if records == nil {
		records = []model.PairRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Document{Pairs: records}); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}
