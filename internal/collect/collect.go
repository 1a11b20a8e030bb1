// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect classifies a query as a gene symbol or SNP identifier
// and gathers annotation data for it from public bioinformatics services.
package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/gene-scout/pkg/types"
)

// Source name keys recorded in the aggregate record. The per-kind subsets
// are fixed: SNP queries use myvariant, clinicaltables, ensembl_vep and
// ncbi_dbsnp; gene queries use myvariant, ensembl_gene, ensembl_variants,
// ncbi_gene and uniprot.
const (
	SourceMyVariant       = "myvariant"
	SourceClinicalTables  = "clinicaltables"
	SourceEnsemblVEP      = "ensembl_vep"
	SourceNCBIdbSNP       = "ncbi_dbsnp"
	SourceEnsemblGene     = "ensembl_gene"
	SourceEnsemblVariants = "ensembl_variants"
	SourceNCBIGene        = "ncbi_gene"
	SourceUniProt         = "uniprot"
)

// Normalize returns the canonical query form used downstream: trimmed and
// lowercased.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Classify maps a raw query string to a query kind. A query whose trimmed,
// case-folded form starts with "rs" is treated as a SNP identifier;
// everything else is a gene symbol. The remainder is not validated, so a
// gene symbol that happens to start with "rs" is misrouted to the SNP path.
func Classify(raw string) types.QueryKind {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(raw)), "RS") {
		return types.KindSNP
	}
	return types.KindGene
}

// Collector fans a query out to the applicable source clients in a fixed
// order and merges whatever succeeds into an aggregate record.
type Collector struct {
	MyVariant      *MyVariantClient
	Ensembl        *EnsemblClient
	ClinicalTables *ClinicalTablesClient
	Eutils         *EutilsClient
	UniProt        *UniProtClient

	// SampleLimit caps the ensembl_variants sample (default 10).
	SampleLimit int
}

// NewCollector wires all source clients onto a shared HTTP client.
// Per-request timeouts are enforced inside each client, so the shared
// client needs no timeout of its own.
func NewCollector(client *http.Client, cfg types.CollectConfig) *Collector {
	return &Collector{
		MyVariant:      &MyVariantClient{Client: client, UserAgent: cfg.UserAgent},
		Ensembl:        &EnsemblClient{Client: client, UserAgent: cfg.UserAgent},
		ClinicalTables: &ClinicalTablesClient{Client: client, UserAgent: cfg.UserAgent},
		Eutils:         &EutilsClient{Client: client, UserAgent: cfg.UserAgent, APIKey: cfg.NCBIAPIKey},
		UniProt:        &UniProtClient{Client: client, UserAgent: cfg.UserAgent},
		SampleLimit:    cfg.VariantSampleLimit,
	}
}

// CollectAll normalizes and classifies the query, attempts every applicable
// source in order, and returns the aggregate of the sources that succeeded.
// Source failures are written to w as one-line diagnostics and never abort
// the run; a record with zero sources is a valid outcome. Each source gets
// exactly one attempt per invocation.
func (c *Collector) CollectAll(ctx context.Context, rawQuery string, w io.Writer) types.AggregateRecord {
	query := Normalize(rawQuery)
	kind := Classify(query)

	rec := types.AggregateRecord{
		Query:   query,
		Kind:    kind,
		Sources: types.NewSourceMap(),
	}

	fmt.Fprintf(w, "collecting data for %s: %s\n", kind, query)

	c.attempt(w, rec.Sources, SourceMyVariant, func() (any, error) {
		return c.MyVariant.Annotation(ctx, query, kind)
	})

	switch kind {
	case types.KindSNP:
		c.attempt(w, rec.Sources, SourceClinicalTables, func() (any, error) {
			return c.ClinicalTables.SNP(ctx, query)
		})
		c.attempt(w, rec.Sources, SourceEnsemblVEP, func() (any, error) {
			return c.Ensembl.VEP(ctx, query)
		})
		c.attempt(w, rec.Sources, SourceNCBIdbSNP, func() (any, error) {
			return c.Eutils.SNPSummary(ctx, query)
		})

	default: // gene
		var gene map[string]any
		c.attempt(w, rec.Sources, SourceEnsemblGene, func() (any, error) {
			g, err := c.Ensembl.LookupGene(ctx, query)
			if err != nil {
				return nil, err
			}
			gene = g
			return g, nil
		})
		if gene != nil {
			c.attempt(w, rec.Sources, SourceEnsemblVariants, func() (any, error) {
				sample, err := c.Ensembl.OverlapVariants(ctx, gene, c.SampleLimit)
				if err != nil {
					return nil, err
				}
				// Count is the size of the truncated sample, not the
				// upstream total.
				return VariantOverlap{Count: len(sample), Sample: sample}, nil
			})
		}
		c.attempt(w, rec.Sources, SourceNCBIGene, func() (any, error) {
			return c.Eutils.GeneSummary(ctx, query)
		})
		c.attempt(w, rec.Sources, SourceUniProt, func() (any, error) {
			return c.UniProt.Protein(ctx, query)
		})
	}

	fmt.Fprintf(w, "collection complete: %d sources retrieved\n", rec.Sources.Len())
	return rec
}

// attempt runs one source fetch, recording the result on success and
// emitting a one-line diagnostic on failure.
func (c *Collector) attempt(w io.Writer, sources *types.SourceMap, name string, fetch func() (any, error)) {
	v, err := fetch()
	if err != nil {
		fmt.Fprintf(w, "warning: %s unavailable: %v\n", name, err)
		return
	}
	sources.Set(name, v)
	fmt.Fprintf(w, "collected %s\n", name)
}
