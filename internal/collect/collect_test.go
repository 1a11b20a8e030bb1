// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/gene-scout/pkg/types"
)

// swapBase redirects a package-level API base URL for the duration of a test.
func swapBase(t *testing.T, target *string, url string) {
	t.Helper()
	old := *target
	*target = url
	t.Cleanup(func() { *target = old })
}

// pointBasesAt redirects every source endpoint to paths under base.
func pointBasesAt(t *testing.T, base string) {
	swapBase(t, &myVariantAPIBase, base+"/mv")
	swapBase(t, &ensemblAPIBase, base+"/ens")
	swapBase(t, &clinicalTablesAPIBase, base+"/ct")
	swapBase(t, &eutilsAPIBase, base+"/eutils")
	swapBase(t, &uniProtAPIBase, base+"/up")
}

// newFixtureServer serves canned success responses for every source
// endpoint and points the package base URLs at itself.
func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/mv/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"dbsnp.rsid":"rs429358","cadd.phred":33}`)
	})
	mux.HandleFunc("/ens/lookup/symbol/homo_sapiens/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"display_name":"APOE","seq_region_name":"19","start":44905791,"end":44909393}`)
	})
	mux.HandleFunc("/ens/overlap/region/homo_sapiens/", func(w http.ResponseWriter, _ *http.Request) {
		var features []string
		for i := 0; i < 25; i++ {
			features = append(features, fmt.Sprintf(`{"id":"rs%d"}`, i))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(features, ","))
	})
	mux.HandleFunc("/ens/vep/homo_sapiens/id/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"input":"rs429358","most_severe_consequence":"missense_variant"}]`)
	})
	mux.HandleFunc("/ct", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[1,["rs429358"],null,[["rs429358","19","44908684","C/T","APOE"]]]`)
	})
	mux.HandleFunc("/eutils/esearch.fcgi", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"esearchresult":{"idlist":["348"]}}`)
	})
	mux.HandleFunc("/eutils/esummary.fcgi", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("db") == "snp" {
			fmt.Fprint(w, `{"result":{"uids":["429358"],"429358":{"snp_id":429358}}}`)
			return
		}
		fmt.Fprint(w, `{"result":{"uids":["348"],"348":{"name":"APOE","chromosome":"19"}}}`)
	})
	mux.HandleFunc("/up", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[{"primaryAccession":"P02649"}]}`)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	pointBasesAt(t, ts.URL)
	return ts
}

func testCollector(ts *httptest.Server) *Collector {
	return NewCollector(ts.Client(), types.CollectConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "test/0.1"},
	})
}

// --- Classifier ---

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  types.QueryKind
	}{
		{"rs123", types.KindSNP},
		{"RS999", types.KindSNP},
		{"Rs7412", types.KindSNP},
		{"  rs7412  ", types.KindSNP},
		{"BRCA1", types.KindGene},
		{"apoe", types.KindGene},
		{"", types.KindGene},
		// Known limitation: no digit check after the prefix.
		{"RSPO1", types.KindSNP},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  RS7412 \n"); got != "rs7412" {
		t.Errorf("Normalize = %q, want %q", got, "rs7412")
	}
}

// --- Orchestrator routing ---

func TestCollectAllSNPRouting(t *testing.T) {
	ts := newFixtureServer(t)
	var buf bytes.Buffer

	rec := testCollector(ts).CollectAll(context.Background(), "rs429358", &buf)

	if rec.Kind != types.KindSNP {
		t.Errorf("Kind = %q, want snp", rec.Kind)
	}
	if rec.Query != "rs429358" {
		t.Errorf("Query = %q, want rs429358", rec.Query)
	}
	want := []string{SourceMyVariant, SourceClinicalTables, SourceEnsemblVEP, SourceNCBIdbSNP}
	if got := rec.Sources.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}
}

func TestCollectAllGeneRouting(t *testing.T) {
	ts := newFixtureServer(t)
	var buf bytes.Buffer

	rec := testCollector(ts).CollectAll(context.Background(), "APOE", &buf)

	if rec.Kind != types.KindGene {
		t.Errorf("Kind = %q, want gene", rec.Kind)
	}
	if rec.Query != "apoe" {
		t.Errorf("Query = %q, want apoe (normalized)", rec.Query)
	}
	want := []string{SourceMyVariant, SourceEnsemblGene, SourceEnsemblVariants, SourceNCBIGene, SourceUniProt}
	if got := rec.Sources.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}
}

func TestCollectAllVariantSampleTruncated(t *testing.T) {
	ts := newFixtureServer(t)
	var buf bytes.Buffer

	rec := testCollector(ts).CollectAll(context.Background(), "APOE", &buf)

	v, ok := rec.Sources.Get(SourceEnsemblVariants)
	if !ok {
		t.Fatal("ensembl_variants missing")
	}
	overlap, ok := v.(VariantOverlap)
	if !ok {
		t.Fatalf("ensembl_variants is %T, want VariantOverlap", v)
	}
	// The fixture serves 25 features; the sample is capped at 10 and the
	// count reflects the capped sample.
	if len(overlap.Sample) != 10 {
		t.Errorf("len(Sample) = %d, want 10", len(overlap.Sample))
	}
	if overlap.Count != len(overlap.Sample) {
		t.Errorf("Count = %d, want %d", overlap.Count, len(overlap.Sample))
	}
}

func TestCollectAllVariantsRequireGeneLookup(t *testing.T) {
	ts := newFixtureServer(t)
	// Lookup fails; the overlap endpoint still works but must not be hit.
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	swapBase(t, &ensemblAPIBase, failing.URL)

	var buf bytes.Buffer
	rec := testCollector(ts).CollectAll(context.Background(), "APOE", &buf)

	if _, ok := rec.Sources.Get(SourceEnsemblGene); ok {
		t.Error("ensembl_gene should be absent when lookup fails")
	}
	if _, ok := rec.Sources.Get(SourceEnsemblVariants); ok {
		t.Error("ensembl_variants must not appear without ensembl_gene")
	}
	// The remaining gene-path sources are still attempted.
	for _, name := range []string{SourceMyVariant, SourceNCBIGene, SourceUniProt} {
		if _, ok := rec.Sources.Get(name); !ok {
			t.Errorf("%s missing: lookup failure must not stop later sources", name)
		}
	}
}

func TestCollectAllFailSoft(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close() // every request now fails at the transport level
	pointBasesAt(t, ts.URL)

	var buf bytes.Buffer
	collector := NewCollector(http.DefaultClient, types.CollectConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "test/0.1"},
	})

	for _, query := range []string{"rs429358", "BRCA1"} {
		rec := collector.CollectAll(context.Background(), query, &buf)
		if rec.Sources.Len() != 0 {
			t.Errorf("%s: sources = %v, want none", query, rec.Sources.Names())
		}
	}
	if !strings.Contains(buf.String(), "warning:") {
		t.Error("expected unavailable diagnostics in the observer output")
	}
}

func TestCollectAllIdempotent(t *testing.T) {
	ts := newFixtureServer(t)
	collector := testCollector(ts)

	var buf bytes.Buffer
	first := collector.CollectAll(context.Background(), "rs429358", &buf)
	second := collector.CollectAll(context.Background(), "rs429358", &buf)

	if !reflect.DeepEqual(first.Sources.Names(), second.Sources.Names()) {
		t.Errorf("source order differs: %v vs %v", first.Sources.Names(), second.Sources.Names())
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Error("repeated collection produced structurally different records")
	}
}
