// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/gene-scout/internal/httputil"
)

// eutilsAPIBase is the NCBI E-utilities root. Declared as a var so tests
// can substitute an httptest server.
var eutilsAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const eutilsTimeout = 10 * time.Second

// EutilsClient queries NCBI E-utilities for gene and dbSNP summaries.
// See https://www.ncbi.nlm.nih.gov/books/NBK25500/ for the esearch and
// esummary contracts.
type EutilsClient struct {
	Client    *http.Client
	UserAgent string

	// APIKey is an optional E-utilities key for higher rate limits.
	APIKey string
}

// esearchResponse covers the slice of the esearch JSON we consume.
type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// esummaryResponse covers the slice of the esummary JSON we consume. The
// result object maps each requested id (plus a "uids" list) to its entry.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

// GeneSummary performs the two-step gene lookup: esearch by gene name for
// an internal id, then esummary for that id. Either step yielding nothing
// is a logical absence.
func (c *EutilsClient) GeneSummary(ctx context.Context, symbol string) (map[string]any, error) {
	params := url.Values{
		"db":      {"gene"},
		"term":    {symbol + "[Gene Name]"},
		"retmode": {"json"},
		"retmax":  {"1"},
	}
	c.addKey(params)

	searchCtx, cancel := context.WithTimeout(ctx, eutilsTimeout)
	defer cancel()

	var sr esearchResponse
	if err := httputil.GetJSON(searchCtx, c.Client, eutilsAPIBase+"/esearch.fcgi?"+params.Encode(), c.UserAgent, &sr); err != nil {
		return nil, fmt.Errorf("NCBI gene search: %w", err)
	}
	if len(sr.ESearchResult.IDList) == 0 {
		return nil, fmt.Errorf("no gene id for %q", symbol)
	}

	return c.summary(ctx, "gene", sr.ESearchResult.IDList[0])
}

// SNPSummary fetches the dbSNP summary for a SNP id. The leading "rs"
// prefix is stripped and the id case-folded before querying, since dbSNP
// keys entries by the bare number.
func (c *EutilsClient) SNPSummary(ctx context.Context, snpID string) (map[string]any, error) {
	id := strings.TrimPrefix(strings.ToLower(snpID), "rs")
	return c.summary(ctx, "snp", id)
}

// summary fetches one esummary entry and returns it as an opaque map.
func (c *EutilsClient) summary(ctx context.Context, db, id string) (map[string]any, error) {
	params := url.Values{
		"db":      {db},
		"id":      {id},
		"retmode": {"json"},
	}
	c.addKey(params)

	ctx, cancel := context.WithTimeout(ctx, eutilsTimeout)
	defer cancel()

	var sr esummaryResponse
	if err := httputil.GetJSON(ctx, c.Client, eutilsAPIBase+"/esummary.fcgi?"+params.Encode(), c.UserAgent, &sr); err != nil {
		return nil, fmt.Errorf("NCBI %s summary: %w", db, err)
	}

	raw, ok := sr.Result[id]
	if !ok {
		return nil, fmt.Errorf("NCBI %s summary has no entry for id %s", db, id)
	}

	var entry map[string]any
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("parsing NCBI %s summary entry: %w", db, err)
	}
	return entry, nil
}

func (c *EutilsClient) addKey(params url.Values) {
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}
}
