package aggregate

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	log "github.com/sirupsen/logrus"

	"census/internal/metrics"
)

// ComputeAverages returns, for every row of df, the share of each variable in
// the row's total over all variables. The result has one float column per
// variable, named and ordered like variables, and one row per row of df.
//
// A row whose total is zero gets NaN shares. Empty or non-numeric cells fail
// the computation.
func ComputeAverages(df dataframe.DataFrame, variables []string) (dataframe.DataFrame, error) {
	columns, err := numericColumns(df, variables)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	nrow := df.Nrow()
	totals := make([]float64, nrow)
	for _, col := range columns {
		for i, v := range col {
			totals[i] += v
		}
	}

	zeroRows := 0
	for _, total := range totals {
		if total == 0 {
			zeroRows++
		}
	}

	shares := make([]series.Series, len(variables))
	for j, col := range columns {
		values := make([]float64, nrow)
		for i, v := range col {
			values[i] = v / totals[i]
		}
		shares[j] = series.New(values, series.Float, variables[j])
	}

	out := dataframe.New(shares...)
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}

	metrics.AggregatedRows.Add(float64(nrow))
	if zeroRows > 0 {
		metrics.ZeroTotalRows.Add(float64(zeroRows))
		log.WithField("rows", zeroRows).Debug("Rows with zero total produce NaN shares")
	}
	return out, nil
}
