package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTable(t *testing.T) {
	body := `[["NAME","B02001_002E","B02001_003E","state","county"],
		["Aitkin County, Minnesota","15054",null,"27","001"],
		["Anoka County, Minnesota",300012,24000,"27","003"]]`

	df, err := ParseTable(strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if df.Nrow() != 2 {
		t.Errorf("expected 2 rows, got %d", df.Nrow())
	}
	names := df.Names()
	want := []string{"NAME", "B02001_002E", "B02001_003E", "state", "county"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("columns = %v, want %v", names, want)
	}

	white := df.Col("B02001_002E").Records()
	if white[0] != "15054" || white[1] != "300012" {
		t.Errorf("unexpected values: %v", white)
	}
	black := df.Col("B02001_003E").Records()
	if black[0] != "" {
		t.Errorf("null cell should be empty, got %q", black[0])
	}
	if county := df.Col("county").Records(); county[0] != "001" {
		t.Errorf("leading zeros lost: %q", county[0])
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		stage string
		empty bool
	}{
		{"empty body", "", StageDecode, true},
		{"not json", "error: invalid key", StageDecode, false},
		{"empty array", "[]", StageTable, true},
		{"header only", `[["NAME","state"]]`, StageTable, true},
		{"ragged row", `[["A","B"],["1"]]`, StageRow, false},
		{"unlabeled column", `[["A",null],["1","2"]]`, StageHeader, false},
		{"duplicate column", `[["A","A"],["1","2"]]`, StageHeader, false},
		{"nested cell", `[["A"],[[1]]]`, StageRow, false},
		{"trailing html", `[["A","B"],["10","30"]] <html>error</html>`, StageDecode, false},
		{"two tables", `[["A"],["1"]] [["A"],["2"]]`, StageDecode, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Stage != tt.stage {
				t.Errorf("stage = %q, want %q", perr.Stage, tt.stage)
			}
			if errors.Is(err, ErrEmptyTable) != tt.empty {
				t.Errorf("errors.Is(ErrEmptyTable) = %v, want %v", !tt.empty, tt.empty)
			}
		})
	}
}
