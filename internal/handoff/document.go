package handoff

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/foundation/normalization"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// Document is the read-only form of a BuildPlan handed to the executor.
type Document struct {
	Policy      string              `json:"policy" yaml:"policy"`
	Fingerprint string              `json:"fingerprint" yaml:"fingerprint"`
	Values      map[string]any      `json:"values" yaml:"values"`
	Provenance  map[string][]string `json:"provenance" yaml:"provenance"`
}

// NewDocument snapshots plan.
func NewDocument(plan resolver.BuildPlan) Document {
	return Document{
		Policy:      plan.Policy().String(),
		Fingerprint: plan.Fingerprint(),
		Values:      plan.Values(),
		Provenance:  plan.ProvenanceMap(),
	}
}

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var formatNormalizer = normalization.NewEnumNormalizer("format", map[string]Format{
	"json": FormatJSON,
	"yaml": FormatYAML,
	"yml":  FormatYAML,
}, FormatJSON)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(raw string) (Format, error) {
	f, err := formatNormalizer.Parse(raw)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryConfig, "unsupported output format").
			WithContext("valid", formatNormalizer.ValidValues()).
			Build()
	}
	return f, nil
}

// Encode writes doc to w. JSON output is indented and newline terminated.
func (d Document) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Decode reads a JSON document, as published by NATSPublisher or written by
// WriterPublisher in JSON format.
func Decode(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("decode plan document: %w", err)
	}
	return d, nil
}
