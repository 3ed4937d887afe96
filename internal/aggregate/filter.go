package aggregate

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"census/internal/models"
)

// FilterArea keeps the rows of a RUCA-joined table whose area class is area.
func FilterArea(df dataframe.DataFrame, area string) (dataframe.DataFrame, error) {
	if area != models.AreaUrban && area != models.AreaRural {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %q", ErrUnknownArea, area)
	}

	found := false
	for _, name := range df.Names() {
		if name == models.ColumnRUCAArea {
			found = true
			break
		}
	}
	if !found {
		return dataframe.DataFrame{}, &MissingColumnError{Column: models.ColumnRUCAArea}
	}

	filtered := df.Filter(dataframe.F{
		Colname:    models.ColumnRUCAArea,
		Comparator: series.Eq,
		Comparando: area,
	})
	if filtered.Err != nil {
		return dataframe.DataFrame{}, filtered.Err
	}
	return filtered, nil
}
