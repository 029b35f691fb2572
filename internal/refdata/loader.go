package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/normalize"
)

// Date layouts used across the reference datasets. The office and title
// files use the slash layout, everything else the ISO layout.
const (
	dateLayoutISO   = "2006-01-02"
	dateLayoutSlash = "02/01/2006"
)

// Load reads every reference dataset from dir. Required files:
// mps.csv, offices.csv, officeholdings.csv. Optional files (empty tables
// when absent): terms.csv, lord_titles.csv, honorary_titles.csv,
// aliases.csv, generic_titles.csv, misspellings_dictionary.csv,
// common_OCR_errors_titles.csv, inference_hints.csv, ignore_labels.csv.
func Load(dir string, logger *slog.Logger) (*Tables, error) {
	t := NewTables()

	if err := loadSpeakers(t, filepath.Join(dir, "mps.csv"), logger); err != nil {
		return nil, fmt.Errorf("load speakers: %w", err)
	}
	if err := loadTerms(t, filepath.Join(dir, "terms.csv"), logger); err != nil {
		return nil, fmt.Errorf("load terms: %w", err)
	}
	if err := loadOffices(t, filepath.Join(dir, "offices.csv"), logger); err != nil {
		return nil, fmt.Errorf("load offices: %w", err)
	}
	if err := loadHoldings(t, filepath.Join(dir, "officeholdings.csv"), logger); err != nil {
		return nil, fmt.Errorf("load office holdings: %w", err)
	}

	aliasTables := []struct {
		file string
		dst  *[]model.AliasEntry
	}{
		{"lord_titles.csv", &t.LordTitles},
		{"honorary_titles.csv", &t.HonoraryTitles},
		{"aliases.csv", &t.NameAliases},
		{"generic_titles.csv", &t.GenericTitles},
	}
	for _, at := range aliasTables {
		entries, err := loadAliasTable(filepath.Join(dir, at.file), logger)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", at.file, err)
		}
		*at.dst = entries
	}

	// Name-alias rows that resolve to a speaker also feed the permutation
	// index as defined aliases.
	for _, e := range t.NameAliases {
		if e.Corresponding.Kind == model.MatchSpeaker {
			t.DefinedAliases[e.Alias] = append(t.DefinedAliases[e.Alias], e.Corresponding.ID)
		}
	}

	if err := loadCorrections(t, dir, logger); err != nil {
		return nil, fmt.Errorf("load corrections: %w", err)
	}
	if err := loadHints(t, filepath.Join(dir, "inference_hints.csv"), logger); err != nil {
		return nil, fmt.Errorf("load inference hints: %w", err)
	}
	if err := loadIgnoreLabels(t, filepath.Join(dir, "ignore_labels.csv")); err != nil {
		return nil, fmt.Errorf("load ignore labels: %w", err)
	}

	logger.Info("reference data loaded",
		"speakers", len(t.Speakers),
		"offices", len(t.Offices),
		"holdings", len(t.Holdings),
		"lord_titles", len(t.LordTitles),
		"honorary_titles", len(t.HonoraryTitles),
		"name_aliases", len(t.NameAliases),
		"generic_titles", len(t.GenericTitles),
		"corrections", len(t.Corrections),
		"hints", len(t.Hints))

	return t, nil
}

// loadSpeakers parses mps.csv: member_id,name,first_name,surname,dob,dod.
// Rows missing a date of birth, first name, or surname are excluded.
func loadSpeakers(t *Tables, path string, logger *slog.Logger) error {
	rows, header, err := readCSV(path)
	if err != nil {
		return err
	}

	var missingDOB, missingName, badID int
	for _, row := range rows {
		id, err := strconv.ParseInt(field(row, header, "member_id"), 10, 64)
		if err != nil {
			badID++
			continue
		}

		dob, err := ParseDate(field(row, header, "dob"))
		if err != nil {
			missingDOB++
			continue
		}
		// A missing date of death means the speaker is assumed alive.
		dod, _ := ParseDate(field(row, header, "dod"))

		first := strings.TrimSpace(field(row, header, "first_name"))
		last := strings.TrimSpace(field(row, header, "surname"))
		if first == "" || last == "" {
			missingName++
			continue
		}

		s := model.NewSpeakerRecord(id, field(row, header, "name"), first, last, dob, dod, model.Interval{})
		t.Speakers[s.ID] = s
		t.SpeakerList = append(t.SpeakerList, s)
	}

	logger.Debug("speakers parsed",
		"loaded", len(t.Speakers),
		"rows", len(rows),
		"missing_dob", missingDOB,
		"missing_name", missingName,
		"bad_id", badID)
	return nil
}

// loadTerms parses terms.csv: member_id,start_term,end_term. Each row is one
// parliamentary seat term; a speaker's service window spans their terms.
func loadTerms(t *Tables, path string, logger *slog.Logger) error {
	rows, header, err := readCSV(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var skipped int
	for _, row := range rows {
		id, err := strconv.ParseInt(field(row, header, "member_id"), 10, 64)
		if err != nil {
			skipped++
			continue
		}
		start, err := ParseDate(field(row, header, "start_term"))
		if err != nil {
			skipped++
			continue
		}
		end, _ := ParseDate(field(row, header, "end_term"))
		term := model.NewInterval(start, end)
		t.Terms[id] = append(t.Terms[id], term)

		if s, ok := t.Speakers[id]; ok {
			if s.Service.IsZero() {
				s.Service = term
				continue
			}
			if term.Start.Before(s.Service.Start) {
				s.Service.Start = term.Start
			}
			if term.End.After(s.Service.End) {
				s.Service.End = term.End
			}
		}
	}

	logger.Debug("terms parsed", "speakers_with_terms", len(t.Terms), "skipped", skipped)
	return nil
}

// loadOffices parses offices.csv: office_id,name. The cleansed office name
// is its primary alias.
func loadOffices(t *Tables, path string, logger *slog.Logger) error {
	rows, header, err := readCSV(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, row := range rows {
		id, err := strconv.ParseInt(field(row, header, "office_id"), 10, 64)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(field(row, header, "name"))
		if name == "" {
			continue
		}
		o := &model.Office{ID: id, Name: name}
		o.Aliases = officeAliases(name)
		t.Offices[id] = o
	}

	logger.Debug("offices parsed", "loaded", len(t.Offices), "rows", len(rows))
	return nil
}

// officeAliases derives the alias strings an office may appear under.
func officeAliases(name string) []string {
	primary := normalize.Cleanse(name)
	aliases := []string{primary}
	if short := strings.TrimPrefix(primary, "the "); short != primary {
		aliases = append(aliases, short)
	}
	return aliases
}

// loadHoldings parses officeholdings.csv:
// holding_id,member_id,office_id,start_date,end_date. Rows referencing
// unknown members or offices, or with invalid dates, are excluded.
func loadHoldings(t *Tables, path string, logger *slog.Logger) error {
	rows, header, err := readCSV(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var unknownMember, unknownOffice, invalidDate int
	for _, row := range rows {
		holdingID, _ := strconv.ParseInt(field(row, header, "holding_id"), 10, 64)
		memberID, err := strconv.ParseInt(field(row, header, "member_id"), 10, 64)
		if err != nil {
			unknownMember++
			continue
		}
		officeID, err := strconv.ParseInt(field(row, header, "office_id"), 10, 64)
		if err != nil {
			unknownOffice++
			continue
		}

		start, err := ParseDate(field(row, header, "start_date"))
		if err != nil {
			invalidDate++
			continue
		}
		end, _ := ParseDate(field(row, header, "end_date"))

		if _, ok := t.Speakers[memberID]; !ok {
			unknownMember++
			continue
		}
		office, ok := t.Offices[officeID]
		if !ok {
			unknownOffice++
			continue
		}

		t.Holdings = append(t.Holdings, &model.OfficeHolding{
			HoldingID: holdingID,
			OfficeID:  officeID,
			HolderID:  memberID,
			Validity:  model.NewInterval(start, end),
			Office:    office,
		})
	}

	logger.Debug("office holdings parsed",
		"loaded", len(t.Holdings),
		"rows", len(rows),
		"unknown_members", unknownMember,
		"unknown_offices", unknownOffice,
		"invalid_dates", invalidDate)
	return nil
}

// loadAliasTable parses one of the four alias table flavors:
// alias,corresponding_id,start,end. A corresponding id of "N/A" or empty
// loads as the unresolved sentinel.
func loadAliasTable(path string, logger *slog.Logger) ([]model.AliasEntry, error) {
	rows, header, err := readCSV(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []model.AliasEntry
	var skipped int
	for _, row := range rows {
		alias := normalize.Cleanse(field(row, header, "alias"))
		if alias == "" {
			skipped++
			continue
		}
		start, err := ParseDate(field(row, header, "start"))
		if err != nil {
			skipped++
			continue
		}
		end, _ := ParseDate(field(row, header, "end"))

		ref := model.UnresolvedRef()
		rawID := strings.TrimSpace(field(row, header, "corresponding_id"))
		if rawID != "" && !strings.EqualFold(rawID, "n/a") {
			id, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				skipped++
				continue
			}
			ref = model.SpeakerRef(id)
		}

		entries = append(entries, model.AliasEntry{
			Alias:         alias,
			Validity:      model.NewInterval(start, end),
			Corresponding: ref,
		})
	}

	logger.Debug("alias table parsed", "file", filepath.Base(path), "loaded", len(entries), "skipped", skipped)
	return entries, nil
}

// loadCorrections merges misspellings_dictionary.csv (incorrect,correct)
// and common_OCR_errors_titles.csv (same shape) into one substitution map,
// keys lower-cased.
func loadCorrections(t *Tables, dir string, logger *slog.Logger) error {
	for _, file := range []string{"misspellings_dictionary.csv", "common_OCR_errors_titles.csv"} {
		rows, header, err := readCSV(filepath.Join(dir, file))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		for _, row := range rows {
			wrong := strings.ToLower(strings.TrimSpace(field(row, header, "incorrect")))
			if wrong == "" {
				continue
			}
			t.Corrections[wrong] = strings.ToLower(strings.TrimSpace(field(row, header, "correct")))
		}
	}
	logger.Debug("corrections parsed", "entries", len(t.Corrections))
	return nil
}

// loadHints parses inference_hints.csv: debate_id,speaker_id.
func loadHints(t *Tables, path string, logger *slog.Logger) error {
	rows, header, err := readCSV(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, row := range rows {
		debateID := strings.TrimSpace(field(row, header, "debate_id"))
		speakerID, err := strconv.ParseInt(field(row, header, "speaker_id"), 10, 64)
		if debateID == "" || err != nil {
			continue
		}
		t.Hints[debateID] = speakerID
	}
	logger.Debug("inference hints parsed", "entries", len(t.Hints))
	return nil
}

// loadIgnoreLabels parses ignore_labels.csv: label (one column).
func loadIgnoreLabels(t *Tables, path string) error {
	rows, header, err := readCSV(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, row := range rows {
		label := normalize.Cleanse(field(row, header, "label"))
		if label != "" {
			t.IgnoreLabels[label] = struct{}{}
		}
	}
	return nil
}

// readCSV reads a whole CSV file, returning its data rows and a
// column-name-to-index map built from the header row.
func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows; field() returns "" for short rows

	headerRow, err := r.Read()
	if err == io.EOF {
		return nil, map[string]int{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, header, nil
}

// field returns the named column of a row, or "" when absent.
func field(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// ParseDate tries the dataset date layouts in order.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{dateLayoutISO, dateLayoutSlash} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
