package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"crosscheck/internal/catalog"
	"crosscheck/internal/common"
	"crosscheck/internal/findings"
	"crosscheck/internal/match"
	"crosscheck/internal/model"
	"crosscheck/internal/normalize"
	"crosscheck/internal/overlap"
	"crosscheck/internal/score"
)

// DefaultWindowDays bounds how far back sibling changes are considered
// for overlap detection.
const DefaultWindowDays = 30

// Engine runs analyses against one immutable catalog snapshot. Safe for
// concurrent use; every run constructs fresh values.
type Engine struct {
	storage  Storage
	snapshot *catalog.Snapshot
	matcher  *match.Matcher
}

// New creates an analysis engine for the given catalog snapshot.
func New(storage Storage, snapshot *catalog.Snapshot) (*Engine, error) {
	if storage == nil {
		return nil, errors.New("storage is required")
	}
	if snapshot == nil {
		return nil, errors.New("catalog snapshot is required")
	}

	return &Engine{
		storage:  storage,
		snapshot: snapshot,
		matcher:  match.NewMatcher(snapshot),
	}, nil
}

// Request describes one analysis run.
type Request struct {
	ChangeID string
	Records  []model.ObjectRecord
	// Skipped carries warnings the input parser already collected; the
	// engine appends its own normalization skips.
	Skipped    []model.SkippedRecord
	WindowDays int
	Weights    score.Weights
	// DryRun skips persisting the findings to history.
	DryRun bool
}

// Analyze executes the full pipeline for one change set and returns its
// findings document. Malformed records are skipped and reported in the
// document metadata; the run only fails on storage errors or internal
// contract violations.
func (e *Engine) Analyze(ctx context.Context, req Request) (model.FindingsDocument, error) {
	var doc model.FindingsDocument

	if req.ChangeID == "" {
		return doc, common.NewUserError("change ID is required", nil)
	}

	window := req.WindowDays
	if window <= 0 {
		window = DefaultWindowDays
	}

	normalized, skipped := e.normalizeAll(req.Records)
	skipped = append(append([]model.SkippedRecord{}, req.Skipped...), skipped...)

	if len(normalized) == 0 {
		return doc, common.NewUserError("no analyzable objects in input", common.ErrMalformedInput)
	}

	classified, err := e.classify(ctx, normalized)
	if err != nil {
		return doc, err
	}

	current := model.ChangeSet{ChangeID: req.ChangeID, Objects: classified}

	since := time.Now().UTC().AddDate(0, 0, -window)
	siblings, err := e.storage.SiblingChangeSets(ctx, req.ChangeID, since)
	if err != nil {
		return doc, fmt.Errorf("failed to load sibling changes: %w", err)
	}

	overlaps := overlap.Detect(current, siblings)

	cfg := score.Config{Weights: req.Weights, MaxWeight: e.snapshot.MaxWeight}
	riskScore := score.Score(current, overlaps, cfg)
	objectRisks := score.ObjectRisks(current, overlaps, cfg)

	meta := model.Metadata{
		RunID:          uuid.NewString(),
		GeneratedAt:    time.Now().UTC(),
		CatalogVersion: e.snapshot.Version,
		SkippedRecords: skipped,
	}

	doc, err = findings.Aggregate(current, classified, overlaps, riskScore, objectRisks, meta)
	if err != nil {
		// Contract violation: a pipeline bug, never recoverable.
		return model.FindingsDocument{}, err
	}

	if !req.DryRun {
		if err := e.storage.SaveChange(ctx, doc); err != nil {
			return doc, fmt.Errorf("failed to persist findings: %w", err)
		}
	}

	common.LogInfo("analysis complete", common.Fields{
		"change_id": doc.ChangeID,
		"objects":   doc.Summary.ObjectsTotal,
		"overlaps":  doc.Summary.OverlapsFound,
		"risk":      doc.Summary.RiskScore,
		"level":     doc.Summary.RiskLevel,
		"skipped":   len(skipped),
	})

	return doc, nil
}

// normalizeAll normalizes every record, collecting skips for malformed
// ones and deduplicating by identity, first occurrence wins.
func (e *Engine) normalizeAll(records []model.ObjectRecord) ([]model.NormalizedObject, []model.SkippedRecord) {
	normalized := make([]model.NormalizedObject, 0, len(records))
	var skipped []model.SkippedRecord
	seen := make(map[string]struct{}, len(records))

	for _, record := range records {
		obj, err := normalize.Normalize(record)
		if err != nil {
			skipped = append(skipped, model.SkippedRecord{Raw: record.Raw, Reason: err.Error()})
			continue
		}
		identity := obj.Identity()
		if _, dup := seen[identity]; dup {
			continue
		}
		seen[identity] = struct{}{}
		normalized = append(normalized, obj)
	}

	return normalized, skipped
}

// classify resolves ownership for every object. Objects are partitioned
// across goroutines; the matcher and snapshot are read-only, so no
// locking is needed and output order is preserved by index.
func (e *Engine) classify(ctx context.Context, objects []model.NormalizedObject) ([]model.ClassifiedObject, error) {
	classified := make([]model.ClassifiedObject, len(objects))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(objects) {
		workers = len(objects)
	}
	if workers <= 1 {
		for i, obj := range objects {
			classified[i] = e.matcher.Classify(obj)
		}
		return classified, nil
	}

	g, _ := errgroup.WithContext(ctx)
	chunk := (len(objects) + workers - 1) / workers
	for start := 0; start < len(objects); start += chunk {
		start := start
		end := start + chunk
		if end > len(objects) {
			end = len(objects)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				classified[i] = e.matcher.Classify(objects[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return classified, nil
}
