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

// ensemblAPIBase is the Ensembl REST API root. Declared as a var so tests
// can substitute an httptest server.
var ensemblAPIBase = "https://rest.ensembl.org"

const (
	ensemblLookupTimeout  = 10 * time.Second
	ensemblOverlapTimeout = 15 * time.Second
	ensemblVEPTimeout     = 10 * time.Second

	defaultSampleLimit = 10
)

// EnsemblClient queries the Ensembl REST API: gene lookup by symbol,
// overlapping variation features for a region, and the Variant Effect
// Predictor.
type EnsemblClient struct {
	Client    *http.Client
	UserAgent string
}

// VariantOverlap groups the variation features overlapping a gene region.
type VariantOverlap struct {
	// Count is the size of Sample. The overlap query truncates before
	// counting, so this is not the total available upstream.
	Count int `json:"count" yaml:"count"`

	// Sample holds at most the configured sample limit of features.
	Sample []any `json:"sample" yaml:"sample"`
}

// LookupGene fetches the lookup object for a human gene symbol. The raw
// object is returned as-is: start, end and seq_region_name feed the
// overlap query downstream.
func (c *EnsemblClient) LookupGene(ctx context.Context, symbol string) (map[string]any, error) {
	reqURL := fmt.Sprintf("%s/lookup/symbol/homo_sapiens/%s", ensemblAPIBase, url.PathEscape(symbol))

	ctx, cancel := context.WithTimeout(ctx, ensemblLookupTimeout)
	defer cancel()

	var out map[string]any
	if err := httputil.GetJSON(ctx, c.Client, reqURL, c.UserAgent, &out); err != nil {
		return nil, fmt.Errorf("Ensembl gene lookup: %w", err)
	}
	return out, nil
}

// OverlapVariants fetches the variation features overlapping the region of
// a gene lookup result, truncated to the first limit entries so a large
// gene cannot flood the payload. An empty feature list is a logical
// absence, reported as an error.
func (c *EnsemblClient) OverlapVariants(ctx context.Context, gene map[string]any, limit int) ([]any, error) {
	region, err := regionFromLookup(gene)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSampleLimit
	}

	params := url.Values{"feature": {"variation"}}
	reqURL := fmt.Sprintf("%s/overlap/region/homo_sapiens/%s?%s", ensemblAPIBase, url.PathEscape(region), params.Encode())

	ctx, cancel := context.WithTimeout(ctx, ensemblOverlapTimeout)
	defer cancel()

	var features []any
	if err := httputil.GetJSON(ctx, c.Client, reqURL, c.UserAgent, &features); err != nil {
		return nil, fmt.Errorf("Ensembl overlap query: %w", err)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("no variation features in %s", region)
	}
	if len(features) > limit {
		features = features[:limit]
	}
	return features, nil
}

// VEP fetches Variant Effect Predictor results for a SNP identifier.
func (c *EnsemblClient) VEP(ctx context.Context, snpID string) ([]any, error) {
	reqURL := fmt.Sprintf("%s/vep/homo_sapiens/id/%s", ensemblAPIBase, url.PathEscape(snpID))

	ctx, cancel := context.WithTimeout(ctx, ensemblVEPTimeout)
	defer cancel()

	var out []any
	if err := httputil.GetJSON(ctx, c.Client, reqURL, c.UserAgent, &out); err != nil {
		return nil, fmt.Errorf("Ensembl VEP request: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no VEP results for %q", snpID)
	}
	return out, nil
}

// regionFromLookup builds the "{seq_region_name}:{start}-{end}" region
// string from a gene lookup object, failing soft when any coordinate
// field is missing or malformed.
func regionFromLookup(gene map[string]any) (string, error) {
	seq, ok := gene["seq_region_name"].(string)
	if !ok || seq == "" {
		return "", fmt.Errorf("gene lookup missing seq_region_name")
	}
	start, ok := coordField(gene, "start")
	if !ok {
		return "", fmt.Errorf("gene lookup missing start")
	}
	end, ok := coordField(gene, "end")
	if !ok {
		return "", fmt.Errorf("gene lookup missing end")
	}
	return fmt.Sprintf("%s:%d-%d", seq, start, end), nil
}

// coordField extracts an integer coordinate from a decoded JSON object,
// where numbers arrive as float64.
func coordField(m map[string]any, key string) (int64, bool) {
	switch v := m[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}
