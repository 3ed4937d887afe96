package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

const tractFIPSWidth = 11

// TractFIPS pads a tract FIPS code to its 11 digits. Spreadsheets often store
// the code as a number and drop the leading zero.
func TractFIPS(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if len(s) < tractFIPSWidth {
		s = strings.Repeat("0", tractFIPSWidth-len(s)) + s
	}
	return s
}

// ParseRUCA reads the first sheet of a RUCA workbook and returns the primary
// RUCA code of every tract keyed by 11-digit tract FIPS. Leading title rows are
// skipped until the header row is found; rows without a usable code are ignored.
func ParseRUCA(r io.Reader) (map[string]int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewParseError(StageDecode, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewParseError(StageSheet, errors.New("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, NewParseError(StageSheet, err)
	}

	headerRow, tractCol, codeCol := -1, -1, -1
	for i, row := range rows {
		tractCol, codeCol = -1, -1
		for j, cell := range row {
			label := strings.ToLower(cell)
			switch {
			case strings.Contains(label, "tract fips"):
				tractCol = j
			case strings.Contains(label, "primary ruca"):
				codeCol = j
			}
		}
		if tractCol >= 0 && codeCol >= 0 {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, NewParseError(StageHeader, fmt.Errorf("sheet %q has no tract FIPS and primary RUCA columns", sheets[0]))
	}

	codes := make(map[string]int)
	for _, row := range rows[headerRow+1:] {
		if tractCol >= len(row) || codeCol >= len(row) {
			continue
		}
		if strings.TrimSpace(row[tractCol]) == "" {
			continue
		}
		tract := TractFIPS(row[tractCol])
		if _, err := strconv.ParseUint(tract, 10, 64); err != nil || len(tract) != tractFIPSWidth {
			continue
		}
		code, err := cast.ToFloat64E(strings.TrimSpace(row[codeCol]))
		if err != nil {
			continue
		}
		codes[tract] = int(code)
	}
	if len(codes) == 0 {
		return nil, NewParseError(StageTable, ErrEmptyTable)
	}
	return codes, nil
}
