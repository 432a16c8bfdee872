package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProductID accepts both numeric and string identifiers from catalog files.
type ProductID string

func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id *ProductID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("product id must be a scalar, line %d", value.Line)
	}
	*id = ProductID(strings.TrimSpace(value.Value))
	return nil
}

// Product is a catalog entry. Price is in the smallest currency unit.
type Product struct {
	ID          ProductID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Price       int64     `json:"price" yaml:"price"`
	Description string    `json:"description" yaml:"description"`
	Stock       *int64    `json:"stock,omitempty" yaml:"stock,omitempty"`
}

// NormalizedName is the case-folded name used for every comparison.
func (p Product) NormalizedName() string {
	return Normalize(p.Name)
}

// ImageSlug is the lowercased name with whitespace runs replaced by "-".
func (p Product) ImageSlug() string {
	return strings.Join(strings.Fields(strings.ToLower(p.Name)), "-")
}

// Normalize trims and lowercases an utterance or product name.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
