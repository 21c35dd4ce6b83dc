// Package export serializes findings documents into reviewer-facing
// formats.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"crosscheck/internal/model"
)

// WriteJSON writes the findings document as indented JSON.
func WriteJSON(w io.Writer, doc model.FindingsDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode findings JSON: %w", err)
	}
	return nil
}
