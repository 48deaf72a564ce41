// Package store defines the storage contract shared by every submission
// backend, plus the CSV encoding the file-shaped backends have in common.
package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
)

// Backend is an append-only submission store with full-scan reads.
type Backend interface {
	// Initialize ensures the store exists with the canonical header. It is
	// idempotent and never destroys existing rows.
	Initialize(ctx context.Context) error
	// Append adds s as the last row.
	Append(ctx context.Context, s feedback.Submission) error
	// LoadAll returns every row, oldest first.
	LoadAll(ctx context.Context) (Table, error)
	Name() string
}

// Table is the result of a full read. Columns is always the canonical order.
type Table struct {
	Columns []string       `json:"columns"`
	Rows    []feedback.Row `json:"rows"`
}

func EmptyTable() Table {
	return Table{Columns: feedback.Columns(), Rows: []feedback.Row{}}
}

func (t Table) Len() int { return len(t.Rows) }

var ErrMalformedHeader = errors.New("store: header has no recognised columns")

// EncodeHeader returns a CSV document holding only the canonical header.
func EncodeHeader() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(feedback.Columns()); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// WriteRows writes rows as CSV records without a header.
func WriteRows(w io.Writer, rows ...feedback.Row) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseCSV reads a CSV document whose first record is a header. Columns are
// mapped by name so reordered or partial files still load. An empty
// document is an empty table.
func ParseCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return EmptyTable(), nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	if !feedback.HasAnyColumn(header) {
		return Table{}, ErrMalformedHeader
	}
	out := EmptyTable()
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row %d: %w", len(out.Rows)+1, err)
		}
		if isBlankRecord(rec) {
			continue
		}
		out.Rows = append(out.Rows, feedback.RowFromValues(header, rec))
	}
	return out, nil
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
