// Package scenario persists loan inputs and their planned extra payments as
// versioned JSON or YAML documents.
package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"gopkg.in/yaml.v3"
)

// Encoding selects the serialization of a scenario document.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

var (
	// ErrMissingVersion is returned when a document carries no version.
	ErrMissingVersion = errors.New("invalid scenario: missing version")
	// ErrMissingData is returned when a document lacks its inputs or extra payments.
	ErrMissingData = errors.New("invalid scenario: missing inputs or extra payments")
	// ErrUnsupportedEncoding is returned for encodings other than json and yaml.
	ErrUnsupportedEncoding = errors.New("unsupported scenario encoding")
)

// Document is an exported scenario.
type Document struct {
	Version       string                    `json:"version" yaml:"version"`
	ExportedAt    time.Time                 `json:"exportedAt" yaml:"exportedAt"`
	Inputs        loans.LoanInputs          `json:"inputs" yaml:"inputs"`
	ExtraPayments []loans.ExtraPaymentEntry `json:"extraPayments" yaml:"extraPayments"`
}

// NewDocument builds a document stamped with the current version and time.
// Entries without an ID are given one.
func NewDocument(inputs loans.LoanInputs, entries []loans.ExtraPaymentEntry) Document {
	entries = loans.EnsureEntryIDs(entries)
	if entries == nil {
		entries = []loans.ExtraPaymentEntry{}
	}
	return Document{
		Version:       constants.ScenarioVersion,
		ExportedAt:    time.Now().UTC().Truncate(time.Second),
		Inputs:        inputs,
		ExtraPayments: entries,
	}
}

// wireInputs accepts the legacy names of the reference rate and the cap.
type wireInputs struct {
	loans.LoanInputs `yaml:",inline"`
	Euribor          *float64 `json:"euribor,omitempty" yaml:"euribor,omitempty"`
	CapRate          *float64 `json:"capRate,omitempty" yaml:"capRate,omitempty"`
}

func (w wireInputs) loanInputs() loans.LoanInputs {
	inputs := w.LoanInputs
	if w.Euribor != nil && inputs.ReferenceRate == 0 {
		inputs.ReferenceRate = *w.Euribor
	}
	if w.CapRate != nil && inputs.AnnualCapRate == 0 {
		inputs.AnnualCapRate = *w.CapRate
	}
	return inputs
}

// wireDocument is the decoding form of Document. Pointers tell absent fields
// apart from empty ones.
type wireDocument struct {
	Version       string                     `json:"version" yaml:"version"`
	ExportedAt    string                     `json:"exportedAt" yaml:"exportedAt"`
	Inputs        *wireInputs                `json:"inputs" yaml:"inputs"`
	ExtraPayments *[]loans.ExtraPaymentEntry `json:"extraPayments" yaml:"extraPayments"`
	Amortizations *[]loans.ExtraPaymentEntry `json:"amortizations" yaml:"amortizations"`
}

func (w wireDocument) document() (Document, error) {
	if w.Version == "" {
		return Document{}, ErrMissingVersion
	}
	entries := w.ExtraPayments
	if entries == nil {
		entries = w.Amortizations
	}
	if w.Inputs == nil || entries == nil {
		return Document{}, ErrMissingData
	}

	doc := Document{
		Version:       w.Version,
		Inputs:        w.Inputs.loanInputs(),
		ExtraPayments: *entries,
	}
	if doc.ExtraPayments == nil {
		doc.ExtraPayments = []loans.ExtraPaymentEntry{}
	}
	if w.ExportedAt != "" {
		exportedAt, err := time.Parse(time.RFC3339, w.ExportedAt)
		if err != nil {
			return Document{}, fmt.Errorf("invalid scenario exportedAt %q: %w", w.ExportedAt, err)
		}
		doc.ExportedAt = exportedAt
	}
	return doc, nil
}

// Encode serializes the document. JSON is indented by two spaces.
func Encode(doc Document, encoding Encoding) ([]byte, error) {
	switch encoding {
	case EncodingJSON:
		return json.MarshalIndent(doc, "", "  ")
	case EncodingYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
}

// Decode parses a document and checks that it carries a version, inputs and
// extra payments. The legacy "amortizations" key is accepted for the latter.
func Decode(data []byte, encoding Encoding) (Document, error) {
	var wire wireDocument
	switch encoding {
	case EncodingJSON:
		if err := json.Unmarshal(data, &wire); err != nil {
			return Document{}, fmt.Errorf("failed to parse scenario json: %w", err)
		}
	case EncodingYAML:
		if err := yaml.Unmarshal(data, &wire); err != nil {
			return Document{}, fmt.Errorf("failed to parse scenario yaml: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
	}
	return wire.document()
}

// EncodingFromPath picks the encoding from a file extension, defaulting to JSON.
func EncodingFromPath(path string) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML
	}
	return EncodingJSON
}

// EncodingFromContentType picks the encoding from an HTTP content type,
// defaulting to JSON.
func EncodingFromContentType(contentType string) Encoding {
	contentType = strings.ToLower(contentType)
	if strings.Contains(contentType, "yaml") {
		return EncodingYAML
	}
	return EncodingJSON
}

// ParseEncoding validates a user-supplied encoding name. Empty means JSON.
func ParseEncoding(value string) (Encoding, error) {
	switch Encoding(strings.ToLower(value)) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingYAML, "yml":
		return EncodingYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, value)
}
