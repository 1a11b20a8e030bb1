// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary turns an aggregate record into a natural-language
// summary via a Generative AI API.
package summary

import (
	"context"
	"fmt"

	"github.com/pdiddy/gene-scout/pkg/types"
)

// Summarizer produces a free-text summary of an aggregate record. The
// Claude implementation is the production backend; tests supply mocks.
type Summarizer interface {
	Summarize(ctx context.Context, rec types.AggregateRecord) (string, error)
}

// Unavailable is the fixed summary returned when no summarizer is
// configured (no API key).
const Unavailable = "summary unavailable: no API key configured"

// Text runs the summarizer and degrades failures to explanatory strings.
// Summarization never fails a run: a nil summarizer yields Unavailable and
// a call error yields an error-describing string.
func Text(ctx context.Context, s Summarizer, rec types.AggregateRecord) string {
	if s == nil {
		return Unavailable
	}
	out, err := s.Summarize(ctx, rec)
	if err != nil {
		return fmt.Sprintf("error generating summary: %v", err)
	}
	return out
}
