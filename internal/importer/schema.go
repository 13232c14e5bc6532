package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportSchema is the file layout for one estimate and its tree. Groups and
// items refer to each other by file-local refs, not stored ids.
type ImportSchema struct {
	Estimate EstimateImport `json:"estimate" yaml:"estimate"`
	Groups   []GroupImport  `json:"groups,omitempty" yaml:"groups,omitempty"`
	Items    []ItemImport   `json:"items,omitempty" yaml:"items,omitempty"`
}

// EstimateImport defines the estimate-level fields in the import file.
type EstimateImport struct {
	Title      string  `json:"title" yaml:"title"`
	Notes      string  `json:"notes,omitempty" yaml:"notes,omitempty"`
	CustomerID *string `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
}

// GroupImport defines a group in the import file. A parent must be listed
// before its children.
type GroupImport struct {
	Ref       string  `json:"ref" yaml:"ref"`
	ParentRef *string `json:"parent_ref,omitempty" yaml:"parent_ref,omitempty"`
	Name      string  `json:"name" yaml:"name"`
	Order     *int    `json:"order,omitempty" yaml:"order,omitempty"`
}

// ItemImport defines an item in the import file. Items without a group_ref
// sit at the root of the tree.
type ItemImport struct {
	Ref            string      `json:"ref,omitempty" yaml:"ref,omitempty"`
	GroupRef       *string     `json:"group_ref,omitempty" yaml:"group_ref,omitempty"`
	Title          string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description    string      `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity       float64     `json:"quantity" yaml:"quantity"`
	Unit           string      `json:"unit,omitempty" yaml:"unit,omitempty"`
	Costs          CostsImport `json:"costs" yaml:"costs"`
	ItemID         *string     `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	CostbookItemID *string     `json:"costbook_item_id,omitempty" yaml:"costbook_item_id,omitempty"`
	Order          *int        `json:"order,omitempty" yaml:"order,omitempty"`
}

// CostsImport holds the per-unit cost components of an item. Absent
// components count as zero.
type CostsImport struct {
	Material    *float64 `json:"material,omitempty" yaml:"material,omitempty"`
	Labor       *float64 `json:"labor,omitempty" yaml:"labor,omitempty"`
	Equipment   *float64 `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Other       *float64 `json:"other,omitempty" yaml:"other,omitempty"`
	Subcontract *float64 `json:"subcontract,omitempty" yaml:"subcontract,omitempty"`
}

// Format is the encoding of an import or export file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension. Anything that
// is not .yaml, .yml or .xlsx is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".xlsx":
		return FormatXLSX
	}
	return FormatJSON
}

// LoadImportSchema reads and parses an estimate import file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data, FormatFromPath(path))
}

// ParseImportSchema decodes data in the given format. Unknown fields are
// rejected so typos do not silently drop values.
func ParseImportSchema(data []byte, format Format) (*ImportSchema, error) {
	var schema ImportSchema
	switch format {
	case FormatXLSX:
		return nil, fmt.Errorf("xlsx is an export-only format")
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&schema); err != nil && err != io.EOF {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
	}
	return &schema, nil
}

// Write encodes schema to w in the given format.
func Write(w io.Writer, schema *ImportSchema, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(schema); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(schema)
	}
}
