// Package engine orchestrates a full analysis run: normalization,
// classification, overlap detection, scoring and aggregation.
package engine

import (
	"context"
	"time"

	"crosscheck/internal/model"
)

// Storage is the change-history persistence the engine depends on.
type Storage interface {
	// SaveChange persists a findings document for future overlap runs.
	SaveChange(ctx context.Context, doc model.FindingsDocument) error
	// SiblingChangeSets returns the classified object sets of other
	// stored changes generated at or after since.
	SiblingChangeSets(ctx context.Context, excludeID string, since time.Time) ([]model.ChangeSet, error)
}
