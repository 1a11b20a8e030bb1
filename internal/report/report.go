// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the final result payload and renders it as
// text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gene-scout/pkg/types"
)

// Assemble shapes the final payload from a collection run. Pure
// transformation: SourcesUsed is derived from the aggregate's source
// order and Query keeps the caller's original spelling.
func Assemble(rawQuery string, rec types.AggregateRecord, summaryText string) types.ResultPayload {
	return types.ResultPayload{
		Query:       rawQuery,
		Kind:        rec.Kind,
		SourcesUsed: rec.Sources.Names(),
		RawData:     rec.Sources,
		Summary:     summaryText,
	}
}

// FormatText writes a human-readable rendering of the payload to w.
func FormatText(p types.ResultPayload, w io.Writer) {
	fmt.Fprintf(w, "Query: %s (%s)\n", p.Query, p.Kind)
	if len(p.SourcesUsed) == 0 {
		fmt.Fprintln(w, "Sources: none returned data")
	} else {
		fmt.Fprintf(w, "Sources (%d): %s\n", len(p.SourcesUsed), strings.Join(p.SourcesUsed, ", "))
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintln(w, p.Summary)
}

// WriteJSON writes the payload as indented JSON to w.
func WriteJSON(p types.ResultPayload, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// WriteYAML writes the payload as YAML to w.
func WriteYAML(p types.ResultPayload, w io.Writer) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ReportFile is the on-disk representation of a completed run. A run can
// be saved to a file and inspected later without re-querying the sources.
type ReportFile struct {
	GeneratedAt time.Time           `yaml:"generated_at"`
	Result      types.ResultPayload `yaml:"result"`
}

// WriteReportFile saves the payload to a YAML report file.
func WriteReportFile(path string, p types.ResultPayload) error {
	rf := ReportFile{
		GeneratedAt: time.Now(),
		Result:      p,
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling report file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
