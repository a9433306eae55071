package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"wfm-planner/errors"
	"wfm-planner/models"
)

// Fragment is one imported row, ready to merge into the store.
type Fragment struct {
	Date  time.Time
	Patch models.RecordPatch
}

// Result collects the outcome of an import.
type Result struct {
	Fragments []Fragment
	Columns   ColumnMap
	// Skipped counts rows that could not be imported; Errors holds a
	// *errors.ParseError for each.
	Skipped int
	Errors  []error
}

// Parse dispatches on the file extension of name (.csv or .xlsx).
func Parse(r io.Reader, name string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		return ParseCSV(r)
	case ".xlsx", ".xlsm":
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseCSV reads a delimited sheet. Comma and semicolon separators are
// both accepted; lines starting with '#' are comments.
func ParseCSV(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrUnreadableInput, err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.Comma = detectDelimiter(string(data))

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV: %v", errors.ErrUnreadableInput, err)
	}
	return ParseRows(rows)
}

// ParseXLSX reads the first worksheet of a workbook. Cells are read raw so
// that date cells arrive as serial day numbers.
func ParseXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", errors.ErrUnreadableInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", errors.ErrUnreadableInput, sheets[0], err)
	}
	return ParseRows(rows)
}

// ParseRows maps a header row plus data rows to record fragments. The first
// non-blank row is the header. Rows whose date cannot be read are skipped
// and reported; only an unreadable header aborts the import.
func ParseRows(rows [][]string) (*Result, error) {
	headerIdx := -1
	for i, row := range rows {
		if !blank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, errors.ErrEmptySheet
	}

	cols := MatchColumns(rows[headerIdx])
	if _, ok := cols[FieldDate]; !ok {
		return nil, &errors.ParseError{
			Line:   headerIdx + 1,
			Record: rows[headerIdx],
			Err:    errors.ErrNoDateColumn,
		}
	}
	if len(cols) == 1 {
		return nil, &errors.ParseError{
			Line:   headerIdx + 1,
			Record: rows[headerIdx],
			Err:    errors.ErrNoFieldsRecognized,
		}
	}

	result := &Result{Columns: cols}
	for i := headerIdx + 1; i < len(rows); i++ {
		record := rows[i]
		if blank(record) {
			continue
		}

		date, err := ParseDate(cols.value(FieldDate, record))
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, &errors.ParseError{
				Line:   i + 1,
				Record: record,
				Err:    err,
			})
			continue
		}

		result.Fragments = append(result.Fragments, Fragment{
			Date:  date,
			Patch: rowPatch(cols, record),
		})
	}
	return result, nil
}

// rowPatch sets only the fields whose cells are non-empty.
func rowPatch(cols ColumnMap, record []string) models.RecordPatch {
	var patch models.RecordPatch
	if v := cols.value(FieldCalls, record); v != "" {
		n := CoerceInt(v)
		patch.Calls = &n
	}
	if v := cols.value(FieldAgents, record); v != "" {
		n := CoerceInt(v)
		patch.Agents = &n
	}
	if v := cols.value(FieldAHT, record); v != "" {
		f := CoerceFloat(v)
		patch.AHT = &f
	}
	if v := cols.value(FieldTalkTime, record); v != "" {
		f := CoerceFloat(v)
		patch.TalkTime = &f
	}
	if v := cols.value(FieldSL, record); v != "" {
		f := CoerceFloat(v)
		patch.SL = &f
	}
	return patch
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// detectDelimiter picks ';' when the first data line has more semicolons
// than commas, as spreadsheets exported with a comma decimal separator do.
func detectDelimiter(data string) rune {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}
		break
	}
	return ','
}
