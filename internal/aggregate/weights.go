package aggregate

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ComputeWeights returns the weight of every row within each variable: the
// row's value divided by the variable's total over all rows. Each variable's
// weights sum to one unless its total is zero, in which case they are NaN.
func ComputeWeights(df dataframe.DataFrame, variables []string) (dataframe.DataFrame, error) {
	columns, err := numericColumns(df, variables)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return build(variables, columnWeights(columns)), nil
}

// ComputeWeightedAverages multiplies each value by its weight within the
// variable, so that summing a column gives the population weighted mean of
// that variable over the areas.
func ComputeWeightedAverages(df dataframe.DataFrame, variables []string) (dataframe.DataFrame, error) {
	columns, err := numericColumns(df, variables)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	weights := columnWeights(columns)
	for j, col := range columns {
		for i, v := range col {
			weights[j][i] *= v
		}
	}
	return build(variables, weights), nil
}

func columnWeights(columns [][]float64) [][]float64 {
	weights := make([][]float64, len(columns))
	for j, col := range columns {
		total := 0.0
		for _, v := range col {
			total += v
		}
		w := make([]float64, len(col))
		for i, v := range col {
			w[i] = v / total
		}
		weights[j] = w
	}
	return weights
}

func build(names []string, columns [][]float64) dataframe.DataFrame {
	s := make([]series.Series, len(columns))
	for j, col := range columns {
		s[j] = series.New(col, series.Float, names[j])
	}
	return dataframe.New(s...)
}
