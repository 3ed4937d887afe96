package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// ParseTable decodes a census API payload, a JSON array of arrays whose first
// row holds the column labels, into a dataframe of string columns.
//
// JSON nulls become empty strings and numbers keep their literal text, so the
// table holds exactly what the API sent.
func ParseTable(r io.Reader) (dataframe.DataFrame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return dataframe.DataFrame{}, NewParseError(StageDecode, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return dataframe.DataFrame{}, NewParseError(StageDecode, ErrEmptyTable)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload [][]interface{}
	if err := dec.Decode(&payload); err != nil {
		return dataframe.DataFrame{}, NewParseError(StageDecode, err)
	}
	// An error page appended to a valid table still means the request failed.
	var rest json.RawMessage
	if err := dec.Decode(&rest); !errors.Is(err, io.EOF) {
		return dataframe.DataFrame{}, NewParseError(StageDecode, errors.New("unexpected data after table"))
	}
	if len(payload) < 2 {
		return dataframe.DataFrame{}, NewParseError(StageTable, ErrEmptyTable)
	}

	headers := make([]string, len(payload[0]))
	seen := make(map[string]bool, len(headers))
	for i, cell := range payload[0] {
		name, ok := cell.(string)
		if !ok || name == "" {
			return dataframe.DataFrame{}, NewParseError(StageHeader, fmt.Errorf("column %d has no label", i))
		}
		if seen[name] {
			return dataframe.DataFrame{}, NewParseError(StageHeader, fmt.Errorf("duplicate column %q", name))
		}
		seen[name] = true
		headers[i] = name
	}

	records := make([][]string, 0, len(payload))
	records = append(records, headers)
	for i, row := range payload[1:] {
		if len(row) != len(headers) {
			return dataframe.DataFrame{}, NewParseError(StageRow,
				fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(headers)))
		}
		record := make([]string, len(row))
		for j, cell := range row {
			s, err := cellString(cell)
			if err != nil {
				return dataframe.DataFrame{}, NewParseError(StageRow, fmt.Errorf("row %d column %q: %w", i, headers[j], err))
			}
			record[j] = s
		}
		records = append(records, record)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, NewParseError(StageTable, df.Err)
	}
	return df, nil
}

func cellString(cell interface{}) (string, error) {
	switch v := cell.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case []interface{}, map[string]interface{}:
		return "", fmt.Errorf("nested value %v", v)
	default:
		return cast.ToStringE(v)
	}
}
