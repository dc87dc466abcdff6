package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ResultRow is one (record, predictor) cell of the consolidated output
// table. DDG is nil until a prediction finished successfully.
type ResultRow struct {
	Identifier     string
	Mutation       string
	Chain          string
	DDG            *float64
	Status         string
	StatusMessage  string
	Predictor      string
	InputType      string
	URL            string
	ElapsedSeconds float64
}

// ResultTable is the consolidated output of one run, ordered by predictor
// and then by record input order.
type ResultTable struct {
	Rows []ResultRow
}

var resultHeader = []string{
	"identifier", "mutation", "chain", "DDG", "status", "status_message",
	"predictor", "input_type", "url", "elapsed_time_seconds",
}

// WriteCSV renders the table with the fixed output schema.
func (t *ResultTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return fmt.Errorf("failed to write result header: %w", err)
	}
	for _, row := range t.Rows {
		ddg := ""
		if row.DDG != nil {
			ddg = strconv.FormatFloat(*row.DDG, 'f', -1, 64)
		}
		rec := []string{
			row.Identifier, row.Mutation, row.Chain, ddg, row.Status,
			row.StatusMessage, row.Predictor, row.InputType, row.URL,
			strconv.FormatFloat(row.ElapsedSeconds, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write result row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var preprocessedHeader = []string{
	"identifier", "mutation", "fasta_mutation", "chain", "ph", "temperature", "fasta",
}

// WritePreprocessedCSV renders the validated dataset in the preprocessed
// record schema, preserving input order.
func (d *Dataset) WritePreprocessedCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(preprocessedHeader); err != nil {
		return fmt.Errorf("failed to write preprocessed header: %w", err)
	}
	for _, r := range d.Records {
		rec := []string{
			r.Identifier.Raw,
			r.Mutation.String(),
			r.SequenceMutation().String(),
			r.Chain,
			strconv.FormatFloat(r.PH, 'f', -1, 64),
			strconv.FormatFloat(r.Temperature, 'f', -1, 64),
			r.Sequence,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write preprocessed row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
