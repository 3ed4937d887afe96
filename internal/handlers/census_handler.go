package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"census/internal/aggregate"
	"census/internal/census"
	"census/internal/fetcher"
	"census/internal/formatter"
	"census/internal/models"
	"census/internal/storage"
)

// Processor runs the census pipeline
type Processor interface {
	Process(ctx context.Context, req census.Request) (census.Result, error)
}

// RunStore persists pipeline results
type RunStore interface {
	SaveRun(run *storage.Run) error
	GetRun(id string) (*storage.Run, error)
	ListRuns(dataset string) ([]storage.Run, error)
	DeleteRun(id string) error
}

// statusClientClosedRequest is reported when the caller went away before the
// pipeline finished. nginx uses the same code.
const statusClientClosedRequest = 499

type CensusHandler struct {
	pipeline Processor
	store    RunStore
	timeout  time.Duration
}

// NewCensusHandler creates the handler. A zero timeout leaves pipeline runs
// bounded only by the client connection.
func NewCensusHandler(pipeline Processor, store RunStore, timeout time.Duration) *CensusHandler {
	return &CensusHandler{
		pipeline: pipeline,
		store:    store,
		timeout:  timeout,
	}
}

// Routes registers the census endpoints on a new mux
func (h *CensusHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/census/process", h.HandleProcess)
	mux.HandleFunc("/api/census/runs", h.HandleListRuns)
	mux.HandleFunc("GET /api/census/runs/{id}/tables/{table}", h.HandleRunTable)
	mux.HandleFunc("/api/census/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleGetRun(w, r)
		case http.MethodDelete:
			h.HandleDeleteRun(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	return mux
}

type processRequest struct {
	Year      int              `json:"year"`
	Dataset   string           `json:"dataset"`
	Variables []string         `json:"variables"`
	Races     []string         `json:"races"`
	Geography models.Geography `json:"geography"`
	Key       string           `json:"key"`
	RUCA      bool             `json:"ruca"`
	Area      string           `json:"area"`
	Save      bool             `json:"save"`
}

type processResponse struct {
	ID               string          `json:"id,omitempty"`
	Raw              formatter.Table `json:"raw"`
	Averages         formatter.Table `json:"averages"`
	Weights          formatter.Table `json:"weights"`
	WeightedAverages formatter.Table `json:"weighted_averages"`
}

// query builds the census query, with the variables of the requested races
// appended after the explicit ones.
func (p processRequest) query() (models.Query, error) {
	raceVars, err := models.RaceVariables(p.Races...)
	if err != nil {
		return models.Query{}, err
	}
	variables := make([]string, 0, len(p.Variables)+len(raceVars))
	variables = append(variables, p.Variables...)
	variables = append(variables, raceVars...)

	q := models.Query{
		Year:      p.Year,
		Dataset:   p.Dataset,
		Variables: variables,
		Geography: p.Geography,
		Key:       p.Key,
		RUCA:      p.RUCA,
	}
	if q.Year == 0 {
		q.Year = models.DefaultYear
	}
	if q.Dataset == "" {
		q.Dataset = models.DefaultDataset
	}
	return q, nil
}

func (h *CensusHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body processRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	q, err := body.query()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := q.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Area != "" && body.Area != models.AreaUrban && body.Area != models.AreaRural {
		http.Error(w, fmt.Sprintf("area must be %s or %s", models.AreaUrban, models.AreaRural), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	logger := log.WithFields(log.Fields{
		"dataset":   q.Dataset,
		"year":      q.Year,
		"geography": q.Geography.String(),
	})

	res, err := h.pipeline.Process(ctx, census.Request{Query: q, Area: body.Area})
	if err != nil {
		status := statusFor(err)
		logger.WithError(err).WithField("status", status).Warn("Census processing failed")
		http.Error(w, err.Error(), status)
		return
	}

	resp := processResponse{
		Raw:              formatter.FormatTable(res.Raw),
		Averages:         formatter.FormatTable(res.Averages),
		Weights:          formatter.FormatTable(res.Weights),
		WeightedAverages: formatter.FormatTable(res.WeightedAverages),
	}

	if body.Save {
		run := &storage.Run{
			Year:             q.Year,
			Dataset:          q.Dataset,
			Geography:        q.Geography.String(),
			Area:             body.Area,
			Variables:        q.Variables,
			Races:            body.Races,
			Raw:              resp.Raw,
			Averages:         resp.Averages,
			Weights:          resp.Weights,
			WeightedAverages: resp.WeightedAverages,
		}
		if err := h.store.SaveRun(run); err != nil {
			logger.WithError(err).Error("Failed to save run")
			http.Error(w, "Error saving run", http.StatusInternalServerError)
			return
		}
		resp.ID = run.ID
		logger.WithField("id", run.ID).Info("Saved run")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// statusFor maps a pipeline error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var (
		ferr *fetcher.FetchError
		cerr *aggregate.CoercionError
		merr *aggregate.MissingColumnError
		derr *aggregate.DuplicateVariableError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, fetcher.ErrNoTractColumns),
		errors.Is(err, aggregate.ErrUnknownArea),
		errors.Is(err, models.ErrNoVariables),
		errors.As(err, &derr):
		return http.StatusBadRequest
	case errors.As(err, &ferr):
		return http.StatusBadGateway
	case errors.As(err, &cerr), errors.As(err, &merr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *CensusHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runs, err := h.store.ListRuns(r.URL.Query().Get("dataset"))
	if err != nil {
		log.WithError(err).Error("Error fetching runs")
		http.Error(w, "Error fetching runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total": len(runs),
		"runs":  runs,
	})
}

func (h *CensusHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.store.GetRun(id)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

func (h *CensusHandler) HandleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "ID is required", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteRun(id); err != nil {
		http.Error(w, "Error deleting run", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Run deleted successfully",
	})
}

// HandleRunTable writes one table of a stored run as CSV
func (h *CensusHandler) HandleRunTable(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.GetRun(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	var table formatter.Table
	switch name := r.PathValue("table"); name {
	case "raw":
		table = run.Raw
	case "averages":
		table = run.Averages
	case "weights":
		table = run.Weights
	case "weighted_averages":
		table = run.WeightedAverages
	default:
		http.Error(w, fmt.Sprintf("unknown table: %s", name), http.StatusNotFound)
		return
	}

	df, err := table.DataFrame()
	if err != nil {
		log.WithError(err).WithField("id", run.ID).Error("Stored table is unreadable")
		http.Error(w, "Error reading table", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	if err := df.WriteCSV(w); err != nil {
		log.WithError(err).WithField("id", run.ID).Warn("Failed to write table")
	}
}
