// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/gene-scout/internal/httputil"
	"github.com/pdiddy/gene-scout/pkg/types"
)

// myVariantAPIBase is the MyVariant.info API root. Declared as a var so
// tests can substitute an httptest server.
var myVariantAPIBase = "https://myvariant.info/v1"

// myVariantFields is the fixed field projection requested from the API.
const myVariantFields = "clinvar,dbnsfp,cadd,cosmic,gnomad,dbsnp,hgvs,gene,refseq,ensembl"

const myVariantTimeout = 10 * time.Second

// MyVariantClient queries the MyVariant.info annotation service. It is the
// one source applicable to both query kinds.
type MyVariantClient struct {
	Client    *http.Client
	UserAgent string
}

// Annotation fetches the annotation record for a query. The endpoint path
// is "variant" for SNP queries and "gene" for gene queries; keys in the
// response are flattened ("dotted") and at most 5 hits are requested.
func (c *MyVariantClient) Annotation(ctx context.Context, query string, kind types.QueryKind) (map[string]any, error) {
	typeParam := "gene"
	if kind == types.KindSNP {
		typeParam = "variant"
	}

	params := url.Values{
		"fields":   {myVariantFields},
		"dotfield": {"true"},
		"size":     {"5"},
	}
	reqURL := fmt.Sprintf("%s/%s/%s?%s", myVariantAPIBase, typeParam, url.PathEscape(query), params.Encode())

	ctx, cancel := context.WithTimeout(ctx, myVariantTimeout)
	defer cancel()

	var out map[string]any
	if err := httputil.GetJSON(ctx, c.Client, reqURL, c.UserAgent, &out); err != nil {
		return nil, fmt.Errorf("MyVariant.info request: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty annotation for %q", query)
	}
	return out, nil
}
