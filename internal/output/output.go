// Package output implements the four result sink schemas from spec.md §6
// (JSONL/JSON/TXT/CSV, optionally gzip-compressed), following the teacher's
// Format/Write dispatch convention (internal/output/formatter.go) adapted to
// a single streaming result type instead of a generic `any`.
package output

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rusub/rusub/internal/scanner"
)

// Format is the requested output record schema (spec.md §6 "--output-type").
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatTXT   Format = "txt"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a --output-type value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatJSONL, FormatTXT, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", s)
	}
}

// recordSchema mirrors the JSON/JSONL wire schema in spec.md §6.
type recordSchema struct {
	Subdomain string        `json:"subdomain"`
	Answers   []string      `json:"answers"`
	Records   []recordEntry `json:"records"`
}

type recordEntry struct {
	RType string `json:"rtype"`
	Data  string `json:"data"`
}

func toSchema(r scanner.ScanResult) recordSchema {
	entries := make([]recordEntry, 0, len(r.Records))
	for _, rec := range r.Records {
		entries = append(entries, recordEntry{RType: string(rec.Type), Data: rec.Data})
	}
	return recordSchema{Subdomain: r.Subdomain, Answers: r.Answers, Records: entries}
}

// ShouldGzip reports whether output should be compressed: either the path
// ends in .gz, or the flag forces it (spec.md §9 "interacts ... as OR").
func ShouldGzip(path string, forceGzip bool) bool {
	return forceGzip || strings.HasSuffix(path, ".gz")
}

// Sink streams ScanResults to an underlying writer in one of the four
// schemas. It is not safe for concurrent use; callers serialize writes
// through the scheduler's single-consumer output channel (spec.md §5).
type Sink struct {
	format Format
	out    io.Writer
	gz     *gzip.Writer
	enc    *json.Encoder // jsonl only
	csv    *csv.Writer   // csv only
	first  bool          // json: whether the next write is the first (no leading comma)

	headerWritten bool // csv: whether the header row has been emitted
}

// NewSink wraps w for format, gzip-compressing if gzip is true. Callers must
// call Close to flush buffered writers and terminate the JSON array / gzip
// stream correctly.
func NewSink(w io.Writer, format Format, useGzip bool) (*Sink, error) {
	s := &Sink{format: format, out: w, first: true}
	if useGzip {
		s.gz = gzip.NewWriter(w)
		s.out = s.gz
	}
	switch format {
	case FormatJSONL:
		s.enc = json.NewEncoder(s.out)
	case FormatCSV:
		s.csv = csv.NewWriter(s.out)
		s.csv.Comma = ';'
	case FormatJSON:
		if _, err := io.WriteString(s.out, "["); err != nil {
			return nil, err
		}
	case FormatTXT:
		// no header
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
	return s, nil
}

// Write appends one result in the sink's schema.
func (s *Sink) Write(r scanner.ScanResult) error {
	switch s.format {
	case FormatJSONL:
		return s.enc.Encode(toSchema(r))
	case FormatJSON:
		sep := ","
		if s.first {
			sep = ""
			s.first = false
		}
		data, err := json.Marshal(toSchema(r))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(s.out, "%s%s", sep, data)
		return err
	case FormatTXT:
		return s.writeTXT(r)
	case FormatCSV:
		return s.writeCSVRow(r)
	default:
		return fmt.Errorf("unsupported output format: %q", s.format)
	}
}

// writeTXT emits "<fqdn>\t<comma-joined answers or \"CNAME <target>\">"
// (spec.md §6).
func (s *Sink) writeTXT(r scanner.ScanResult) error {
	value := strings.Join(r.Answers, ",")
	if value == "" {
		for _, rec := range r.Records {
			if rec.Type == "CNAME" {
				value = "CNAME " + rec.Data
				break
			}
		}
	}
	_, err := fmt.Fprintf(s.out, "%s\t%s\n", r.Subdomain, value)
	return err
}

func (s *Sink) writeCSVRow(r scanner.ScanResult) error {
	if !s.headerWritten {
		s.headerWritten = true
		if err := s.csv.Write([]string{"subdomain", "answers"}); err != nil {
			return err
		}
	}
	return s.csv.Write([]string{r.Subdomain, strings.Join(r.Answers, "|")})
}

// Close flushes buffered writers, terminates the JSON array if needed, and
// closes the gzip stream. It does not close the underlying io.Writer.
func (s *Sink) Close() error {
	var err error
	switch s.format {
	case FormatJSON:
		_, err = io.WriteString(s.out, "]")
	case FormatCSV:
		s.csv.Flush()
		err = s.csv.Error()
	}
	if s.gz != nil {
		if closeErr := s.gz.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
