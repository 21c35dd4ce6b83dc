// Package model defines the core data structures for the crosscheck application.
package model

import (
	"fmt"
)

// ObjectRecord is a raw change-management object identifier as produced by
// one of the input parsers. Fields may be noisy (mixed case, stray
// whitespace); only Name is required.
type ObjectRecord struct {
	Class   string `json:"obj_class"`
	Type    string `json:"obj_type"`
	Name    string `json:"obj_name"`
	Package string `json:"package,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// NormalizedObject is an ObjectRecord in canonical form plus the derived
// match key used for rule lookup. Instances are immutable once produced.
type NormalizedObject struct {
	Class   string `json:"obj_class"`
	Type    string `json:"obj_type"`
	Name    string `json:"obj_name"`
	Package string `json:"package,omitempty"`
	// MatchKey is a pure function of the normalized fields: the name,
	// package-qualified when a package is known.
	MatchKey string `json:"match_key"`
	// UnknownClass and UnknownType flag values outside the known ABAP
	// vocabulary. Informative only; unknown objects still flow through
	// classification.
	UnknownClass bool `json:"unknown_class,omitempty"`
	UnknownType  bool `json:"unknown_type,omitempty"`
}

// Identity returns the canonical CLASS:TYPE:NAME key that identifies an
// object across change sets.
func (o NormalizedObject) Identity() string {
	return fmt.Sprintf("%s:%s:%s", o.Class, o.Type, o.Name)
}

// AsRecord converts the normalized object back into a record, e.g. to
// round-trip through normalization.
func (o NormalizedObject) AsRecord() ObjectRecord {
	return ObjectRecord{
		Class:   o.Class,
		Type:    o.Type,
		Name:    o.Name,
		Package: o.Package,
	}
}
