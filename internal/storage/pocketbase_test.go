package storage

import (
	"math"
	"testing"

	"census/internal/formatter"
)

func newTestStore(t *testing.T) *PocketBaseStore {
	t.Helper()
	store, err := NewPocketBaseStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	run := &Run{
		Year:      2019,
		Dataset:   "acs/acs5",
		Geography: "county:* in state:27",
		Variables: []string{"A", "B"},
		Races:     []string{"white"},
		Raw: formatter.Table{
			Columns: []string{"A", "B", "state"},
			Rows:    [][]interface{}{{"10", "30", "27"}},
		},
		Averages: formatter.Table{
			Columns: []string{"A", "B"},
			Rows:    [][]interface{}{{0.25, nil}},
		},
		Weights: formatter.Table{
			Columns: []string{"A", "B"},
			Rows:    [][]interface{}{{1.0, 1.0}},
		},
		WeightedAverages: formatter.Table{
			Columns: []string{"A", "B"},
			Rows:    [][]interface{}{{10.0, 30.0}},
		},
	}
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	if run.ID == "" || run.Created.IsZero() {
		t.Fatalf("save should fill id and creation time: %+v", run)
	}

	other := &Run{Year: 2020, Dataset: "dec/pl", Geography: "state:*", Variables: []string{"P1_001N"}}
	if err := store.SaveRun(other); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Year != 2019 || got.Dataset != "acs/acs5" || len(got.Variables) != 2 {
		t.Errorf("unexpected run: %+v", got)
	}
	if len(got.Races) != 1 || got.Races[0] != "white" {
		t.Errorf("races = %v, want [white]", got.Races)
	}
	if len(got.Weights.Rows) != 1 || got.Weights.Rows[0][0] != 1.0 {
		t.Errorf("unexpected weights: %+v", got.Weights)
	}
	if len(got.WeightedAverages.Rows) != 1 || got.WeightedAverages.Rows[0][1] != 30.0 {
		t.Errorf("unexpected weighted averages: %+v", got.WeightedAverages)
	}
	df, err := got.Averages.DataFrame()
	if err != nil {
		t.Fatalf("stored averages do not form a table: %v", err)
	}
	if b := df.Col("B").Float()[0]; !math.IsNaN(b) {
		t.Errorf("null share should come back as NaN, got %v", b)
	}

	runs, err := store.ListRuns("acs/acs5")
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("dataset filter returned %d runs", len(runs))
	}

	all, err := store.ListRuns("")
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 runs, got %d", len(all))
	}

	if err := store.DeleteRun(run.ID); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}
	if _, err := store.GetRun(run.ID); err == nil {
		t.Error("deleted run should not be found")
	}
}

func TestReopenStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPocketBaseStore(dir, "")
	if err != nil {
		t.Fatalf("failed to open new data directory: %v", err)
	}
	run := &Run{Year: 2019, Dataset: "acs/acs5", Geography: "state:*", Variables: []string{"A"}}
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}
	store.Close()

	store, err = NewPocketBaseStore(dir, "")
	if err != nil {
		t.Fatalf("failed to reopen data directory: %v", err)
	}
	defer store.Close()

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("run lost after reopening: %v", err)
	}
	if got.Dataset != "acs/acs5" {
		t.Errorf("unexpected run: %+v", got)
	}
}
