package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/use-agent/mapsrun/models"
)

// Result is the parsed content of one results file.
type Result struct {
	// Records holds one raw JSON value per non-empty line, in file order.
	// Never nil.
	Records []json.RawMessage

	// Empty is true when the file held nothing but whitespace. It is an
	// informational outcome, not a failure.
	Empty bool
}

// ParseError reports the first line that is not valid JSON.
type ParseError struct {
	Line int    // 1-based line number in the file
	Text string // the offending line
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReadFile reads the results file from its start and parses it.
func ReadFile(path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to read results file", err)
	}
	return Parse(content)
}

// Parse interprets content as JSON lines.
//
// Blank lines are skipped. Every other line must hold exactly one JSON
// value; the first that does not fails the whole parse with
// RESULT_PARSE_ERROR carrying the raw content, and no records are returned.
func Parse(content []byte) (*Result, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return &Result{Records: []json.RawMessage{}, Empty: true}, nil
	}

	lines := bytes.Split(content, []byte("\n"))
	records := make([]json.RawMessage, 0, len(lines))

	for i, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var rec json.RawMessage
		if err := json.Unmarshal(line, &rec); err != nil {
			perr := &ParseError{Line: i + 1, Text: string(line), Err: err}
			se := models.NewScrapeError(
				models.ErrCodeResultParse,
				"failed to parse JSON output from the scraper: "+perr.Error(),
				perr,
			)
			se.Raw = string(content)
			return nil, se
		}
		records = append(records, rec)
	}

	return &Result{Records: records}, nil
}
