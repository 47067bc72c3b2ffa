package data

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Record is a single LETOR click-through record: a relevance label, a
// query id, and the query/document feature vector. The text form is
// the libsvm-style line `rel qid:N 0:v0 1:v1 ...`.
type Record struct {
	Rel      float64
	QID      int
	Features []float64
}

// String renders the record in LETOR line format.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(r.Rel, 'g', -1, 64))
	b.WriteString(" qid:")
	b.WriteString(strconv.Itoa(r.QID))
	for i, v := range r.Features {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// ParseRecord parses a LETOR line back into a record.
func ParseRecord(line string) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("malformed record line: %q", line)
	}

	rel, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, fmt.Errorf("parsing relevance %q: %w", fields[0], err)
	}

	qidStr, ok := strings.CutPrefix(fields[1], "qid:")
	if !ok {
		return nil, fmt.Errorf("missing qid in record line: %q", line)
	}
	qid, err := strconv.Atoi(qidStr)
	if err != nil {
		return nil, fmt.Errorf("parsing qid %q: %w", qidStr, err)
	}

	r := &Record{Rel: rel, QID: qid, Features: make([]float64, len(fields)-2)}
	for i, field := range fields[2:] {
		idxStr, valStr, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("malformed feature %q in line: %q", field, line)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx != i {
			return nil, fmt.Errorf("unexpected feature index %q at position %d", idxStr, i)
		}
		v, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing feature value %q: %w", valStr, err)
		}
		r.Features[i] = v
	}

	return r, nil
}

// WriteRecords writes records to a LETOR file, one per line.
func WriteRecords(path string, records []*Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating records file %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, r := range records {
		if _, err := w.WriteString(r.String()); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing records file %s: %w", path, err)
	}

	return nil
}

// ReadRecords loads a LETOR file written by WriteRecords.
func ReadRecords(path string) ([]*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records file %s: %w", path, err)
	}
	defer file.Close()

	var records []*Record
	s := bufio.NewScanner(file)
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; s.Scan(); line++ {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			continue
		}
		r, err := ParseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("records file %s line %d: %w", path, line, err)
		}
		records = append(records, r)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading records file %s: %w", path, err)
	}

	return records, nil
}
