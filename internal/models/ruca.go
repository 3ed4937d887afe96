package models

// Columns added to a table joined with RUCA codes
const (
	ColumnRUCA     = "ruca"
	ColumnRUCAArea = "ruca_area"
)

// RUCA areas
const (
	AreaUrban = "urban"
	AreaRural = "rural"
)

// DefaultRUCAURL points at the USDA 2010 RUCA codes workbook.
const DefaultRUCAURL = "https://www.ers.usda.gov/webdocs/DataFiles/53241/ruca2010revised.xlsx?v=7676.8"

// ClassifyRUCA maps a primary RUCA code to its area: codes 1-3 are
// metropolitan (urban), 4-10 non-metropolitan (rural). Anything else is
// unclassified and yields "".
func ClassifyRUCA(code int) string {
	switch {
	case code >= 1 && code <= 3:
		return AreaUrban
	case code >= 4 && code <= 10:
		return AreaRural
	default:
		return ""
	}
}
