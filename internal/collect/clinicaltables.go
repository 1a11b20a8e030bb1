// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/gene-scout/internal/httputil"
)

// clinicalTablesAPIBase is the NLM Clinical Tables SNP search endpoint.
// Declared as a var so tests can substitute an httptest server.
var clinicalTablesAPIBase = "https://clinicaltables.nlm.nih.gov/api/snps/v3/search"

const clinicalTablesTimeout = 5 * time.Second

// ClinicalTablesClient queries the NLM Clinical Tables SNP service.
type ClinicalTablesClient struct {
	Client    *http.Client
	UserAgent string
}

// SNPRecord is the fixed-field projection of one Clinical Tables row.
type SNPRecord struct {
	RSID       string `json:"rsid" yaml:"rsid"`
	Chromosome string `json:"chromosome" yaml:"chromosome"`
	Position   string `json:"position" yaml:"position"`
	Alleles    string `json:"alleles" yaml:"alleles"`
	Gene       string `json:"gene,omitempty" yaml:"gene,omitempty"`
}

// SNP issues a free-text search for a SNP id and scans the result table
// for the row whose first column equals the queried id. The response is a
// positional array whose fourth element is the row table; anything else is
// a malformed shape. No matching row is a logical absence.
func (c *ClinicalTablesClient) SNP(ctx context.Context, snpID string) (*SNPRecord, error) {
	params := url.Values{"terms": {snpID}}
	reqURL := clinicalTablesAPIBase + "?" + params.Encode()

	ctx, cancel := context.WithTimeout(ctx, clinicalTablesTimeout)
	defer cancel()

	var payload []json.RawMessage
	if err := httputil.GetJSON(ctx, c.Client, reqURL, c.UserAgent, &payload); err != nil {
		return nil, fmt.Errorf("ClinicalTables request: %w", err)
	}
	if len(payload) < 4 {
		return nil, fmt.Errorf("ClinicalTables response has %d elements, want 4", len(payload))
	}

	var table [][]string
	if err := json.Unmarshal(payload[3], &table); err != nil {
		return nil, fmt.Errorf("parsing ClinicalTables row table: %w", err)
	}

	for _, row := range table {
		if len(row) < 4 || row[0] != snpID {
			continue
		}
		rec := &SNPRecord{
			RSID:       row[0],
			Chromosome: row[1],
			Position:   row[2],
			Alleles:    row[3],
		}
		if len(row) > 4 {
			rec.Gene = row[4]
		}
		return rec, nil
	}
	return nil, fmt.Errorf("no row for %q", snpID)
}
