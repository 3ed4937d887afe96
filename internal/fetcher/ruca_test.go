package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"census/internal/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

func tractTable() dataframe.DataFrame {
	return dataframe.LoadRecords([][]string{
		{"B02001_002E", "B02001_003E", "state", "county", "tract"},
		{"10", "30", "27", "001", "770100"},
		{"20", "20", "27", "053", "000100"},
		{"5", "5", "27", "999", "999999"},
	}, dataframe.DetectTypes(false))
}

func TestJoinRUCA(t *testing.T) {
	codes := map[string]int{
		"27001770100": 10,
		"27053000100": 1,
	}

	joined, err := JoinRUCA(tractTable(), codes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rucas := joined.Col(models.ColumnRUCA).Records()
	areas := joined.Col(models.ColumnRUCAArea).Records()
	want := [][2]string{{"10", models.AreaRural}, {"1", models.AreaUrban}, {"", ""}}
	for i, w := range want {
		if rucas[i] != w[0] || areas[i] != w[1] {
			t.Errorf("row %d: got (%q, %q), want (%q, %q)", i, rucas[i], areas[i], w[0], w[1])
		}
	}
	if joined.Nrow() != 3 {
		t.Errorf("join must keep every row, got %d", joined.Nrow())
	}
}

func TestJoinRUCANeedsTracts(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"B02001_002E", "state", "county"},
		{"10", "27", "001"},
	}, dataframe.DetectTypes(false))

	if _, err := JoinRUCA(df, map[string]int{}); !errors.Is(err, ErrNoTractColumns) {
		t.Errorf("expected ErrNoTractColumns, got %v", err)
	}
}

func TestDownloadWithRUCA(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetRow("Sheet1", "A1", &[]interface{}{"State-County-Tract FIPS Code", "Primary RUCA Code 2010"})
	f.SetSheetRow("Sheet1", "A2", &[]interface{}{"27001770100", 7})
	workbook, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ruca.xlsx", func(w http.ResponseWriter, r *http.Request) {
		w.Write(workbook.Bytes())
	})
	mux.HandleFunc("/2019/acs/acs5", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[["B02001_002E","state","county","tract"],["10","27","001","770100"]]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	q := models.NewQuery([]string{"B02001_002E"}, models.LevelTract, "")
	q.RUCA = true

	c := New(WithBaseURL(server.URL), WithRUCAURL(server.URL+"/ruca.xlsx"))
	df, err := c.Download(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := df.Col(models.ColumnRUCAArea).Records()[0]; got != models.AreaRural {
		t.Errorf("ruca_area = %q, want rural", got)
	}
}
