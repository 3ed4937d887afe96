package formatter

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is the JSON form of a dataframe
type Table struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// FormatTable converts a dataframe into rows of cells. Float cells that are
// NaN or infinite become nil since JSON cannot carry them; string cells stay
// strings.
func FormatTable(df dataframe.DataFrame) Table {
	names := df.Names()
	table := Table{
		Columns: names,
		Rows:    make([][]interface{}, df.Nrow()),
	}
	for i := range table.Rows {
		table.Rows[i] = make([]interface{}, len(names))
	}

	for j, name := range names {
		col := df.Col(name)
		switch col.Type() {
		case series.Float:
			for i, v := range col.Float() {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					table.Rows[i][j] = nil
					continue
				}
				table.Rows[i][j] = v
			}
		case series.Int:
			values, err := col.Int()
			if err != nil {
				for i, v := range col.Records() {
					table.Rows[i][j] = v
				}
				continue
			}
			for i, v := range values {
				table.Rows[i][j] = v
			}
		default:
			for i, v := range col.Records() {
				table.Rows[i][j] = v
			}
		}
	}
	return table
}

// DataFrame rebuilds a dataframe from a table. Columns holding only numbers
// and nils come back as float columns with NaN for nil, everything else as
// strings.
func (t Table) DataFrame() (dataframe.DataFrame, error) {
	if len(t.Columns) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("table has no columns")
	}

	cols := make([]series.Series, len(t.Columns))
	for j, name := range t.Columns {
		floats := make([]float64, len(t.Rows))
		strs := make([]string, len(t.Rows))
		numeric := true
		for i, row := range t.Rows {
			if j >= len(row) {
				return dataframe.DataFrame{}, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(t.Columns))
			}
			switch v := row[j].(type) {
			case nil:
				floats[i] = math.NaN()
			case float64:
				floats[i] = v
				strs[i] = fmt.Sprint(v)
			case int:
				floats[i] = float64(v)
				strs[i] = fmt.Sprint(v)
			case string:
				numeric = false
				strs[i] = v
			default:
				numeric = false
				strs[i] = fmt.Sprint(v)
			}
		}
		if numeric {
			cols[j] = series.New(floats, series.Float, name)
		} else {
			cols[j] = series.New(strs, series.String, name)
		}
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}
