// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/gene-scout/internal/httputil"
)

// uniProtAPIBase is the UniProtKB search endpoint. Declared as a var so
// tests can substitute an httptest server.
var uniProtAPIBase = "https://rest.uniprot.org/uniprotkb/search"

const uniProtTimeout = 10 * time.Second

// humanTaxonID restricts UniProt searches to Homo sapiens.
const humanTaxonID = "9606"

// UniProtClient queries UniProtKB for protein function annotation.
type UniProtClient struct {
	Client    *http.Client
	UserAgent string
}

type uniProtResponse struct {
	Results []map[string]any `json:"results"`
}

// Protein searches UniProtKB by gene symbol restricted to the human taxon
// and returns the first result only. An empty result list is a logical
// absence.
func (c *UniProtClient) Protein(ctx context.Context, symbol string) (map[string]any, error) {
	params := url.Values{
		"query":  {fmt.Sprintf("gene:%s AND organism_id:%s", symbol, humanTaxonID)},
		"format": {"json"},
		"size":   {"1"},
	}
	reqURL := uniProtAPIBase + "?" + params.Encode()

	ctx, cancel := context.WithTimeout(ctx, uniProtTimeout)
	defer cancel()

	var out uniProtResponse
	if err := httputil.GetJSON(ctx, c.Client, reqURL, c.UserAgent, &out); err != nil {
		return nil, fmt.Errorf("UniProt request: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("no protein entry for %q", symbol)
	}
	return out.Results[0], nil
}
