// Package preprocess turns raw input rows into a validated dataset: it
// parses lines, resolves sequences through the fallback cascade, validates
// mutations against the resolved sequences and applies the strict or
// permissive policy.
package preprocess

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loschmidt/BenchStab/pkg/dataset"
	"github.com/loschmidt/BenchStab/pkg/mutation"
)

// ParseStage tags diagnostics produced while parsing raw rows.
const ParseStage = "parsing"

// ParseError reports a malformed input row. Rows carrying a ParseError
// become Error-severity diagnostics, the only severity that can abort a
// strict run.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %q is in a wrong format: %s", e.Line, e.Reason)
}

// Accepted column delimiters, probed per row in this order.
var delimiters = []string{" ", "\t", ",", ";"}

// Row arity: identifier and mutation are required; chain, pH and
// temperature are optional.
const (
	minColumns = 2
	maxColumns = 5
)

// splitRow strips comments and probes each accepted delimiter against the
// expected arity. The first delimiter producing between two and five
// non-empty columns wins. An empty row (blank or comment-only) returns nil
// columns and no error.
func splitRow(line string) ([]string, error) {
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	for _, delim := range delimiters {
		var fields []string
		clean := true
		for _, f := range strings.Split(line, delim) {
			if f = strings.TrimSpace(f); f == "" {
				continue
			}
			// A mixed row like "1CSE, L45G, I" splits on space into
			// comma-carrying fields; only the comma split is the real one.
			if strings.ContainsAny(f, ",;\t") {
				clean = false
				break
			}
			fields = append(fields, f)
		}
		if clean && len(fields) >= minColumns && len(fields) <= maxColumns {
			return fields, nil
		}
	}
	return nil, &ParseError{
		Line:   line,
		Reason: `accepted format is "IDENTIFIER MUTATION [CHAIN] [PH] [TEMPERATURE]" with space, tab, comma or semicolon delimiters`,
	}
}

// parseRow builds a record from split columns. The chain column is
// recognized positionally by shape (a single letter, or an "auth X"
// annotation) so that sequence inputs may omit it.
func parseRow(line string, fields []string) (*dataset.Record, error) {
	id, ok := dataset.Classify(fields[0])
	if !ok {
		return nil, &ParseError{Line: line, Reason: fmt.Sprintf("invalid sequence/structure identifier %q", fields[0])}
	}
	mut, err := mutation.Parse(fields[1])
	if err != nil {
		return nil, &ParseError{Line: line, Reason: err.Error()}
	}

	rec := &dataset.Record{
		Identifier:  id,
		Mutation:    mut,
		PH:          dataset.DefaultPH,
		Temperature: dataset.DefaultTemperature,
	}

	rest := fields[2:]
	if len(rest) > 0 {
		if chain := dataset.ExtractChain(rest[0]); chain != "" {
			rec.Chain = chain
			rec.Identifier.Chain = chain
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		ph, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return nil, &ParseError{Line: line, Reason: fmt.Sprintf("invalid pH value %q", rest[0])}
		}
		rec.PH = ph
		rest = rest[1:]
	}
	if len(rest) > 0 {
		temp, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return nil, &ParseError{Line: line, Reason: fmt.Sprintf("invalid temperature value %q", rest[0])}
		}
		rec.Temperature = temp
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return nil, &ParseError{Line: line, Reason: "too many columns"}
	}
	return rec, nil
}
