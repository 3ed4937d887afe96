package models

import "fmt"

// RaceCodes maps race names to their ACS population variables
var RaceCodes = map[string]string{
	"white":  "B02001_002E",
	"black":  "B02001_003E",
	"native": "B02001_004E",
	"asian":  "B02001_005E",
}

// RaceVariables resolves race names to variable identifiers, keeping the input order.
func RaceVariables(races ...string) ([]string, error) {
	vars := make([]string, 0, len(races))
	for _, race := range races {
		code, ok := RaceCodes[race]
		if !ok {
			return nil, fmt.Errorf("unknown race: %s", race)
		}
		vars = append(vars, code)
	}
	return vars, nil
}
