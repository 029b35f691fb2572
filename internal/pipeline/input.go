package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/refdata"
)

// DebateReader streams a debates CSV without holding the file in memory.
// Expected columns: date, speaker, and optionally row_id, house, debate_id.
// Rows with an unparseable date are skipped and counted, never fatal.
type DebateReader struct {
	file    *os.File
	csv     *csv.Reader
	header  map[string]int
	line    int64
	skipped int
}

// OpenDebates opens the debates CSV and reads its header.
func OpenDebates(path string) (*DebateReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open debates: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read debates header: %w", err)
	}
	header := make(map[string]int, len(head))
	for i, name := range head {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "speaker"} {
		if _, ok := header[required]; !ok {
			_ = f.Close()
			return nil, fmt.Errorf("debates header missing column %q", required)
		}
	}

	return &DebateReader{file: f, csv: r, header: header}, nil
}

// Next reads up to chunkSize records. It returns io.EOF once the file is
// exhausted; the final chunk may be short.
func (d *DebateReader) Next(chunkSize int) ([]model.DebateRecord, error) {
	records := make([]model.DebateRecord, 0, chunkSize)

	for len(records) < chunkSize {
		row, err := d.csv.Read()
		if err == io.EOF {
			if len(records) > 0 {
				return records, nil
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("read debates row: %w", err)
		}
		d.line++

		date, err := refdata.ParseDate(d.field(row, "date"))
		if err != nil {
			d.skipped++
			continue
		}

		rowID := d.line
		if raw := d.field(row, "row_id"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				rowID = id
			}
		}

		records = append(records, model.DebateRecord{
			RowID:          rowID,
			Date:           date,
			RawLabel:       d.field(row, "speaker"),
			House:          strings.TrimSpace(d.field(row, "house")),
			DeliberationID: strings.TrimSpace(d.field(row, "debate_id")),
		})
	}
	return records, nil
}

// Skipped reports how many rows were dropped for unparseable dates.
func (d *DebateReader) Skipped() int { return d.skipped }

// Close releases the underlying file.
func (d *DebateReader) Close() error { return d.file.Close() }

func (d *DebateReader) field(row []string, name string) string {
	i, ok := d.header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
