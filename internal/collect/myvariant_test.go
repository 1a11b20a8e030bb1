// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/gene-scout/pkg/types"
)

func TestMyVariantAnnotationPathByKind(t *testing.T) {
	tests := []struct {
		kind     types.QueryKind
		query    string
		wantPath string
	}{
		{types.KindSNP, "rs429358", "/variant/rs429358"},
		{types.KindGene, "apoe", "/gene/apoe"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var gotPath string
			var gotQuery map[string][]string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.Query()
				fmt.Fprint(w, `{"dbsnp.rsid":"rs429358"}`)
			}))
			defer ts.Close()
			swapBase(t, &myVariantAPIBase, ts.URL)

			c := &MyVariantClient{Client: ts.Client(), UserAgent: "test/0.1"}
			if _, err := c.Annotation(context.Background(), tt.query, tt.kind); err != nil {
				t.Fatalf("Annotation: %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if got := gotQuery["size"]; len(got) != 1 || got[0] != "5" {
				t.Errorf("size = %v, want [5]", got)
			}
			if got := gotQuery["dotfield"]; len(got) != 1 || got[0] != "true" {
				t.Errorf("dotfield = %v, want [true]", got)
			}
			if got := gotQuery["fields"]; len(got) != 1 || !strings.Contains(got[0], "clinvar") {
				t.Errorf("fields = %v, want the fixed projection", got)
			}
		})
	}
}

func TestMyVariantAnnotationEmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()
	swapBase(t, &myVariantAPIBase, ts.URL)

	c := &MyVariantClient{Client: ts.Client(), UserAgent: "test/0.1"}
	if _, err := c.Annotation(context.Background(), "rs0", types.KindSNP); err == nil {
		t.Error("expected error for empty annotation object")
	}
}
