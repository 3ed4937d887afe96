package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"census/internal/metrics"
	"census/internal/models"
	"census/internal/parser"

	"github.com/go-gota/gota/dataframe"
	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the root of the census data API.
const DefaultBaseURL = "https://api.census.gov/data"

// statusBodyLimit bounds how much of an error body ends up in a StatusError.
const statusBodyLimit = 512

// Client downloads tables from the census data API
type Client struct {
	baseURL    string
	rucaURL    string
	httpClient *http.Client
	rucaClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the client used for census requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRUCAURL sets where the RUCA workbook is downloaded from.
func WithRUCAURL(u string) Option {
	return func(c *Client) {
		c.rucaURL = u
	}
}

// New creates a client. Census requests go through a plain http.Client, so
// only the caller's context bounds them.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		rucaURL:    models.DefaultRUCAURL,
		httpClient: &http.Client{},
		rucaClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the request URL for a query.
func (c *Client) Endpoint(q models.Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u = u.JoinPath(strconv.Itoa(q.Year), q.Dataset)

	params := url.Values{}
	params.Set("get", strings.Join(q.Variables, ","))
	params.Set("for", q.Geography.For())
	if in := q.Geography.In(); in != "" {
		params.Set("in", in)
	}
	if q.Key != "" {
		params.Set("key", q.Key)
	}
	// the API wants %20 for the spaces in "block group" and in the "in" clause
	u.RawQuery = strings.ReplaceAll(params.Encode(), "+", "%20")
	return u.String(), nil
}

// Download issues one GET for the query and returns the response as a table
// whose columns are the labels of the first response row.
func (c *Client) Download(ctx context.Context, q models.Query) (dataframe.DataFrame, error) {
	if err := q.Validate(); err != nil {
		return dataframe.DataFrame{}, NewFetchError(StageRequest, err)
	}

	df, err := c.download(ctx, q)
	if err != nil {
		metrics.FetchRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return dataframe.DataFrame{}, err
	}
	metrics.FetchRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.FetchedRows.Add(float64(df.Nrow()))

	if !q.RUCA {
		return df, nil
	}

	codes, err := c.DownloadRUCA(ctx)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	joined, err := JoinRUCA(df, codes)
	if err != nil {
		return dataframe.DataFrame{}, NewFetchError(StageJoin, err)
	}
	return joined, nil
}

func (c *Client) download(ctx context.Context, q models.Query) (dataframe.DataFrame, error) {
	endpoint, err := c.Endpoint(q)
	if err != nil {
		return dataframe.DataFrame{}, NewFetchError(StageRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return dataframe.DataFrame{}, NewFetchError(StageRequest, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	log.WithFields(log.Fields{
		"dataset":   q.Dataset,
		"year":      q.Year,
		"geography": q.Geography.String(),
		"variables": len(q.Variables),
	}).Debug("Requesting census data")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return dataframe.DataFrame{}, NewFetchError(StageTransport, err)
	}
	defer resp.Body.Close()

	log.WithField("status", resp.StatusCode).Debug("Received census response")

	if resp.StatusCode == http.StatusNoContent {
		return dataframe.DataFrame{}, NewFetchError(StageDecode, ErrEmptyResponse)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, statusBodyLimit))
		return dataframe.DataFrame{}, NewFetchError(StageStatus, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		})
	}

	df, err := parser.ParseTable(resp.Body)
	if err != nil {
		if errors.Is(err, parser.ErrEmptyTable) {
			return dataframe.DataFrame{}, NewFetchError(StageDecode, fmt.Errorf("%w: %w", ErrEmptyResponse, err))
		}
		return dataframe.DataFrame{}, NewFetchError(StageDecode, err)
	}

	log.WithFields(log.Fields{
		"rows":    df.Nrow(),
		"columns": df.Ncol(),
	}).Debug("Parsed census table")
	return df, nil
}
