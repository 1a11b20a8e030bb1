// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gene-scout pipeline.
package types

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// QueryKind distinguishes gene-symbol queries from SNP-identifier queries.
type QueryKind string

const (
	KindGene QueryKind = "gene"
	KindSNP  QueryKind = "snp"
)

// SourceMap maps source names to the payload retrieved from that source.
// Keys preserve insertion order: the order sources were collected in is
// part of the output contract (data_sources_used), so iteration and
// marshaling must not fall back to map ordering.
type SourceMap struct {
	names  []string
	values map[string]any
}

// NewSourceMap returns an empty SourceMap.
func NewSourceMap() *SourceMap {
	return &SourceMap{values: make(map[string]any)}
}

// Set records the payload for a source. A repeated name overwrites the
// value but keeps the original position.
func (m *SourceMap) Set(name string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = value
}

// Get returns the payload for a source and whether it is present.
func (m *SourceMap) Get(name string) (any, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Names returns the source names in insertion order.
func (m *SourceMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len returns the number of sources present.
func (m *SourceMap) Len() int {
	return len(m.names)
}

// MarshalJSON emits a JSON object with keys in insertion order.
func (m *SourceMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, name := range m.names {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[name])
		if err != nil {
			return nil, fmt.Errorf("marshaling source %s: %w", name, err)
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON decodes a JSON object. Go's json package exposes no key
// order, so insertion order after a round-trip is the decoder's map order.
func (m *SourceMap) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.names = m.names[:0]
	m.values = make(map[string]any, len(raw))
	for name, v := range raw {
		m.Set(name, v)
	}
	return nil
}

// MarshalYAML emits a YAML mapping with keys in insertion order.
func (m *SourceMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range m.names {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		valNode := &yaml.Node{}
		if err := valNode.Encode(m.values[name]); err != nil {
			return nil, fmt.Errorf("encoding source %s: %w", name, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// AggregateRecord is the merged result of all successful source queries
// for one input. Sources holds only the sources that produced data;
// failed sources are absent entirely, never present as nulls.
type AggregateRecord struct {
	// Query is the normalized (lowercase, trimmed) query text.
	Query string `json:"query" yaml:"query"`

	// Kind is the classified query kind.
	Kind QueryKind `json:"type" yaml:"type"`

	// Sources maps source name to that source's payload, in collection order.
	Sources *SourceMap `json:"sources" yaml:"sources"`
}

// ResultPayload is the final output for one query.
type ResultPayload struct {
	// Query is the query exactly as the caller provided it.
	Query string `json:"query" yaml:"query"`

	// Kind is the classified query kind.
	Kind QueryKind `json:"type" yaml:"type"`

	// SourcesUsed lists the sources that produced data, in collection order.
	SourcesUsed []string `json:"data_sources_used" yaml:"data_sources_used"`

	// RawData is the per-source payload mapping from the aggregate record.
	RawData *SourceMap `json:"raw_data" yaml:"raw_data"`

	// Summary is the generated summary text, or an explanatory string when
	// summarization was unavailable or failed.
	Summary string `json:"ai_summary" yaml:"ai_summary"`
}
