package aggregate

import (
	"errors"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cast"
)

var errNotFinite = errors.New("value is not finite")

// numericColumns reads the variables of df as float columns, in variable order.
// Any cell that is empty or not a finite number fails the whole read.
func numericColumns(df dataframe.DataFrame, variables []string) ([][]float64, error) {
	if len(variables) == 0 {
		return nil, ErrNoVariables
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	seen := make(map[string]bool, len(variables))
	for _, v := range variables {
		if seen[v] {
			return nil, &DuplicateVariableError{Variable: v}
		}
		seen[v] = true
		if !present[v] {
			return nil, &MissingColumnError{Column: v}
		}
	}

	columns := make([][]float64, len(variables))
	for j, v := range variables {
		cells := df.Col(v).Records()
		values := make([]float64, len(cells))
		for i, cell := range cells {
			f, err := toFloat(cell)
			if err != nil {
				return nil, &CoercionError{Row: i, Column: v, Value: cell, Err: err}
			}
			values[i] = f
		}
		columns[j] = values
	}
	return columns, nil
}

func toFloat(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, ErrMissingValue
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}
