package storage

import (
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/migrations/logs"
	pbModels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/models/schema"
	"github.com/pocketbase/pocketbase/tools/migrate"
	log "github.com/sirupsen/logrus"

	"census/internal/formatter"
)

const (
	runsCollection = "census_runs"
	// jsonMaxSize bounds a stored table, block group tables of a large state included.
	jsonMaxSize = 64 << 20
)

// Run is a persisted pipeline result. The API key of the query is never kept.
type Run struct {
	ID               string          `json:"id"`
	Year             int             `json:"year"`
	Dataset          string          `json:"dataset"`
	Geography        string          `json:"geography"`
	Area             string          `json:"area,omitempty"`
	Variables        []string        `json:"variables"`
	Races            []string        `json:"races,omitempty"`
	Raw              formatter.Table `json:"raw"`
	Averages         formatter.Table `json:"averages"`
	Weights          formatter.Table `json:"weights"`
	WeightedAverages formatter.Table `json:"weighted_averages"`
	Created          time.Time       `json:"created"`
}

type PocketBaseStore struct {
	app *pocketbase.PocketBase
}

// NewPocketBaseStore opens the PocketBase data directory. When httpAddr is not
// empty the PocketBase admin server is started on it in the background.
func NewPocketBaseStore(dataDir, httpAddr string) (*PocketBaseStore, error) {
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: dataDir,
	})

	if err := app.Bootstrap(); err != nil {
		return nil, fmt.Errorf("failed to bootstrap PocketBase: %w", err)
	}

	if err := runMigrations(app); err != nil {
		return nil, fmt.Errorf("failed to migrate PocketBase: %w", err)
	}

	if err := ensureCollection(app); err != nil {
		return nil, fmt.Errorf("failed to ensure collection exists: %w", err)
	}

	if httpAddr != "" {
		app.RootCmd.SetArgs([]string{"serve", "--dir", dataDir, "--http", httpAddr})
		go func() {
			if err := app.Start(); err != nil {
				log.WithError(err).Error("Failed to start PocketBase")
			}
		}()
	}

	return &PocketBaseStore{app: app}, nil
}

// runMigrations applies the PocketBase system migrations to the data and logs
// databases, the same ones the serve command applies on start.
func runMigrations(app *pocketbase.PocketBase) error {
	connections := []struct {
		db   *dbx.DB
		list migrate.MigrationsList
	}{
		{app.DB(), migrations.AppMigrations},
		{app.LogsDB(), logs.LogsMigrations},
	}

	for _, c := range connections {
		runner, err := migrate.NewRunner(c.db, c.list)
		if err != nil {
			return err
		}
		applied, err := runner.Up()
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			log.WithField("migrations", len(applied)).Debug("Applied PocketBase migrations")
		}
	}

	return app.RefreshSettings()
}

func ensureCollection(app *pocketbase.PocketBase) error {
	if _, err := app.Dao().FindCollectionByNameOrId(runsCollection); err == nil {
		return nil
	}

	collection := &pbModels.Collection{
		Name: runsCollection,
		Type: pbModels.CollectionTypeBase,
		Schema: schema.NewSchema(
			&schema.SchemaField{
				Name:    "year",
				Type:    schema.FieldTypeNumber,
				Options: &schema.NumberOptions{},
			},
			&schema.SchemaField{
				Name:     "dataset",
				Type:     schema.FieldTypeText,
				Required: true,
				Options:  &schema.TextOptions{},
			},
			&schema.SchemaField{
				Name:     "geography",
				Type:     schema.FieldTypeText,
				Required: true,
				Options:  &schema.TextOptions{},
			},
			&schema.SchemaField{
				Name:    "area",
				Type:    schema.FieldTypeText,
				Options: &schema.TextOptions{},
			},
			&schema.SchemaField{
				Name:    "variables",
				Type:    schema.FieldTypeJson,
				Options: &schema.JsonOptions{MaxSize: jsonMaxSize},
			},
			&schema.SchemaField{
				Name:    "races",
				Type:    schema.FieldTypeJson,
				Options: &schema.JsonOptions{MaxSize: jsonMaxSize},
			},
			&schema.SchemaField{
				Name:    "raw",
				Type:    schema.FieldTypeJson,
				Options: &schema.JsonOptions{MaxSize: jsonMaxSize},
			},
			&schema.SchemaField{
				Name:    "averages",
				Type:    schema.FieldTypeJson,
				Options: &schema.JsonOptions{MaxSize: jsonMaxSize},
			},
			&schema.SchemaField{
				Name:    "weights",
				Type:    schema.FieldTypeJson,
				Options: &schema.JsonOptions{MaxSize: jsonMaxSize},
			},
			&schema.SchemaField{
				Name:    "weighted_averages",
				Type:    schema.FieldTypeJson,
				Options: &schema.JsonOptions{MaxSize: jsonMaxSize},
			},
		),
	}

	if err := app.Dao().SaveCollection(collection); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	log.WithField("collection", runsCollection).Info("Created collection")
	return nil
}

// SaveRun stores a run and fills in its ID and creation time.
func (s *PocketBaseStore) SaveRun(run *Run) error {
	collection, err := s.app.Dao().FindCollectionByNameOrId(runsCollection)
	if err != nil {
		return fmt.Errorf("failed to find collection: %w", err)
	}

	record := pbModels.NewRecord(collection)
	record.Set("year", run.Year)
	record.Set("dataset", run.Dataset)
	record.Set("geography", run.Geography)
	record.Set("area", run.Area)
	record.Set("variables", run.Variables)
	record.Set("races", run.Races)
	record.Set("raw", run.Raw)
	record.Set("averages", run.Averages)
	record.Set("weights", run.Weights)
	record.Set("weighted_averages", run.WeightedAverages)

	if err := s.app.Dao().SaveRecord(record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	run.ID = record.Id
	run.Created = record.Created.Time()
	return nil
}

func (s *PocketBaseStore) GetRun(id string) (*Run, error) {
	record, err := s.app.Dao().FindRecordById(runsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return recordToRun(record)
}

// ListRuns returns every stored run, only those of one dataset when dataset is set.
func (s *PocketBaseStore) ListRuns(dataset string) ([]Run, error) {
	var exprs []dbx.Expression
	if dataset != "" {
		exprs = append(exprs, dbx.HashExp{"dataset": dataset})
	}

	records, err := s.app.Dao().FindRecordsByExpr(runsCollection, exprs...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	runs := make([]Run, 0, len(records))
	for _, record := range records {
		run, err := recordToRun(record)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

func (s *PocketBaseStore) DeleteRun(id string) error {
	record, err := s.app.Dao().FindRecordById(runsCollection, id)
	if err != nil {
		return fmt.Errorf("failed to find run: %w", err)
	}

	if err := s.app.Dao().DeleteRecord(record); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func recordToRun(record *pbModels.Record) (*Run, error) {
	run := &Run{
		ID:        record.Id,
		Year:      record.GetInt("year"),
		Dataset:   record.GetString("dataset"),
		Geography: record.GetString("geography"),
		Area:      record.GetString("area"),
		Created:   record.Created.Time(),
	}
	for field, dst := range map[string]interface{}{
		"variables":         &run.Variables,
		"races":             &run.Races,
		"raw":               &run.Raw,
		"averages":          &run.Averages,
		"weights":           &run.Weights,
		"weighted_averages": &run.WeightedAverages,
	} {
		if err := record.UnmarshalJSONField(field, dst); err != nil {
			return nil, fmt.Errorf("failed to decode %s of run %s: %w", field, record.Id, err)
		}
	}
	return run, nil
}

// Close releases the database connections.
func (s *PocketBaseStore) Close() error {
	return s.app.ResetBootstrapState()
}
