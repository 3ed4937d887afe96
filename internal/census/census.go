// Package census downloads census tables and turns them into per-area
// variable shares.
package census

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	log "github.com/sirupsen/logrus"

	"census/internal/aggregate"
	"census/internal/fetcher"
	"census/internal/models"
)

// Fetcher downloads the raw table for a query
type Fetcher interface {
	Download(ctx context.Context, q models.Query) (dataframe.DataFrame, error)
}

// Request is one run of the pipeline
type Request struct {
	Query models.Query
	// Area restricts the rows to urban or rural tracts; it needs Query.RUCA.
	Area string
}

// Result holds the table that was aggregated, the share of each variable per
// row, and the weight of each row within each variable
type Result struct {
	Raw              dataframe.DataFrame
	Averages         dataframe.DataFrame
	Weights          dataframe.DataFrame
	WeightedAverages dataframe.DataFrame
}

// Pipeline downloads a table and computes its shares
type Pipeline struct {
	fetcher Fetcher
}

// NewPipeline creates a pipeline around a fetcher
func NewPipeline(f Fetcher) *Pipeline {
	return &Pipeline{fetcher: f}
}

// Process downloads the table for the request and computes the share of each
// variable per row. When an area is requested, Raw holds only the rows of
// that area so that Raw and Averages line up row for row.
func (p *Pipeline) Process(ctx context.Context, req Request) (Result, error) {
	if req.Area != "" {
		req.Query.RUCA = true
	}

	raw, err := p.fetcher.Download(ctx, req.Query)
	if err != nil {
		return Result{}, fmt.Errorf("failed to download census data: %w", err)
	}

	if req.Area != "" {
		raw, err = aggregate.FilterArea(raw, req.Area)
		if err != nil {
			return Result{}, fmt.Errorf("failed to filter %s areas: %w", req.Area, err)
		}
	}

	averages, err := aggregate.ComputeAverages(raw, req.Query.Variables)
	if err != nil {
		return Result{}, fmt.Errorf("failed to compute averages: %w", err)
	}

	weights, err := aggregate.ComputeWeights(raw, req.Query.Variables)
	if err != nil {
		return Result{}, fmt.Errorf("failed to compute weights: %w", err)
	}

	weighted, err := aggregate.ComputeWeightedAverages(raw, req.Query.Variables)
	if err != nil {
		return Result{}, fmt.Errorf("failed to compute weighted averages: %w", err)
	}

	log.WithFields(log.Fields{
		"dataset":   req.Query.Dataset,
		"geography": req.Query.Geography.String(),
		"rows":      raw.Nrow(),
	}).Info("Processed census data")

	return Result{
		Raw:              raw,
		Averages:         averages,
		Weights:          weights,
		WeightedAverages: weighted,
	}, nil
}

var defaultClient = fetcher.New()

// DownloadCensusData fetches variables for every area of the given geography
// level from the default year and dataset.
func DownloadCensusData(ctx context.Context, variables []string, area string, apiKey string) (dataframe.DataFrame, error) {
	return defaultClient.Download(ctx, models.NewQuery(variables, area, apiKey))
}

// ProcessCensusData downloads variables for the given geography level and
// returns the raw table together with the share of each variable per row.
func ProcessCensusData(ctx context.Context, variables []string, area string, apiKey string) (dataframe.DataFrame, dataframe.DataFrame, error) {
	res, err := NewPipeline(defaultClient).Process(ctx, Request{
		Query: models.NewQuery(variables, area, apiKey),
	})
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}
	return res.Raw, res.Averages, nil
}
