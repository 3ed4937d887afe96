package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"census/internal/models"
	"census/internal/parser"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	log "github.com/sirupsen/logrus"
)

// DownloadRUCA fetches the RUCA workbook and returns the primary code of
// every tract keyed by 11-digit tract FIPS.
func (c *Client) DownloadRUCA(ctx context.Context) (map[string]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rucaURL, nil)
	if err != nil {
		return nil, NewFetchError(StageRequest, fmt.Errorf("failed to create RUCA request: %w", err))
	}

	log.WithField("url", c.rucaURL).Debug("Downloading RUCA codes")
	resp, err := c.rucaClient.Do(req)
	if err != nil {
		return nil, NewFetchError(StageTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, statusBodyLimit))
		return nil, NewFetchError(StageStatus, &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	codes, err := parser.ParseRUCA(resp.Body)
	if err != nil {
		return nil, NewFetchError(StageDecode, err)
	}
	log.WithField("tracts", len(codes)).Debug("Loaded RUCA codes")
	return codes, nil
}

// JoinRUCA left-joins RUCA codes onto a tract or block group table. It adds a
// ruca column holding the code and a ruca_area column holding its class; both
// are empty for tracts without a code.
func JoinRUCA(df dataframe.DataFrame, codes map[string]int) (dataframe.DataFrame, error) {
	names := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		names[name] = true
	}
	if !names["state"] || !names["county"] || !names["tract"] {
		return dataframe.DataFrame{}, ErrNoTractColumns
	}

	states := df.Col("state").Records()
	counties := df.Col("county").Records()
	tracts := df.Col("tract").Records()

	rucas := make([]string, df.Nrow())
	areas := make([]string, df.Nrow())
	matched := 0
	for i := range rucas {
		code, ok := codes[states[i]+counties[i]+tracts[i]]
		if !ok {
			continue
		}
		rucas[i] = strconv.Itoa(code)
		areas[i] = models.ClassifyRUCA(code)
		matched++
	}

	joined := df.Mutate(series.New(rucas, series.String, models.ColumnRUCA)).
		Mutate(series.New(areas, series.String, models.ColumnRUCAArea))
	if joined.Err != nil {
		return dataframe.DataFrame{}, joined.Err
	}

	log.WithFields(log.Fields{
		"rows":    df.Nrow(),
		"matched": matched,
	}).Debug("Joined RUCA codes")
	return joined, nil
}
