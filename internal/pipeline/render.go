package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/worker"
)

// Summary aggregates one run.
type Summary struct {
	Rows         int           `json:"rows"`
	Matched      int           `json:"matched"`
	Missed       int           `json:"missed"`
	Ambiguous    int           `json:"ambiguous"`
	Ignored      int           `json:"ignored"`
	Fuzzy        int           `json:"fuzzy"`
	SkippedInput int           `json:"skipped_input"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

// Render writes a human-readable run summary.
func (s *Summary) Render(w io.Writer) {
	fmt.Fprintf(w, "rows processed: %d (input rows skipped: %d)\n", s.Rows, s.SkippedInput)
	fmt.Fprintf(w, "  matched:   %d (%s)\n", s.Matched, s.percent(s.Matched))
	fmt.Fprintf(w, "  missed:    %d (%s)\n", s.Missed, s.percent(s.Missed))
	fmt.Fprintf(w, "  ambiguous: %d (%s)\n", s.Ambiguous, s.percent(s.Ambiguous))
	fmt.Fprintf(w, "  ignored:   %d (%s)\n", s.Ignored, s.percent(s.Ignored))
	fmt.Fprintf(w, "  fuzzy resolutions: %d\n", s.Fuzzy)
	fmt.Fprintf(w, "elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
}

func (s *Summary) percent(n int) string {
	if s.Rows == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(s.Rows))
}

// WriteJSON writes the summary as JSON.
func (s *Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// ResultWriter splits row results into the three output datasets:
// resolved, missed, and ambiguous. Ignored rows produce no output.
type ResultWriter struct {
	dir string
}

// NewResultWriter creates a writer rooted at dir.
func NewResultWriter(dir string) *ResultWriter {
	return &ResultWriter{dir: dir}
}

const rowDateLayout = "2006-01-02"

// WriteAll writes every row result, ordered as given.
func (w *ResultWriter) WriteAll(rows []worker.RowResult) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	resolved, err := newCSV(filepath.Join(w.dir, "resolved.csv"),
		[]string{"row_id", "date", "label", "speaker_id", "fuzzy"})
	if err != nil {
		return err
	}
	defer resolved.close()

	missed, err := newCSV(filepath.Join(w.dir, "missed.csv"),
		[]string{"row_id", "date", "label"})
	if err != nil {
		return err
	}
	defer missed.close()

	ambiguous, err := newCSV(filepath.Join(w.dir, "ambiguous.csv"),
		[]string{"row_id", "date", "label", "candidates"})
	if err != nil {
		return err
	}
	defer ambiguous.close()

	for _, row := range rows {
		id := strconv.FormatInt(row.Record.RowID, 10)
		date := row.Record.Date.Format(rowDateLayout)

		switch row.Resolution.Outcome {
		case model.OutcomeMatched:
			err = resolved.write([]string{id, date, row.Label,
				strconv.FormatInt(row.Resolution.SpeakerID, 10),
				strconv.FormatBool(row.Resolution.Fuzzy)})
		case model.OutcomeMiss:
			err = missed.write([]string{id, date, row.Label})
		case model.OutcomeAmbiguous:
			err = ambiguous.write([]string{id, date, row.Label,
				joinIDs(row.Resolution.Candidates)})
		}
		if err != nil {
			return err
		}
	}

	for _, f := range []*csvFile{resolved, missed, ambiguous} {
		if err := f.flush(); err != nil {
			return err
		}
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ";")
}

// csvFile pairs a file with its csv writer so errors surface once.
type csvFile struct {
	file   *os.File
	writer *csv.Writer
	path   string
}

func newCSV(path string, header []string) (*csvFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header of %s: %w", path, err)
	}
	return &csvFile{file: f, writer: w, path: path}, nil
}

func (c *csvFile) write(row []string) error {
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("write row to %s: %w", c.path, err)
	}
	return nil
}

func (c *csvFile) flush() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", c.path, err)
	}
	if err := c.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.path, err)
	}
	c.file = nil
	return nil
}

func (c *csvFile) close() {
	if c.file != nil {
		_ = c.file.Close()
	}
}
