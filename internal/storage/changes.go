package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"crosscheck/internal/common"
	"crosscheck/internal/model"
)

// StoredChange summarizes one persisted analysis run.
type StoredChange struct {
	ChangeID     string
	GeneratedAt  time.Time
	ObjectsTotal int
	RiskScore    float64
	RiskLevel    model.RiskLevel
}

// SaveChange persists a findings document, replacing any prior run for
// the same change ID.
func (s *SQLiteStorage) SaveChange(ctx context.Context, doc model.FindingsDocument) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(doc.ChangeID, "changeID"); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal findings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO changes(change_id, generated_at, findings_json)
		VALUES(?, ?, ?)`,
		doc.ChangeID, doc.Meta.GeneratedAt.UTC(), string(data))
	if err != nil {
		return fmt.Errorf("failed to save change %s: %w", doc.ChangeID, err)
	}

	return nil
}

// GetChange loads the stored findings document for a change ID.
func (s *SQLiteStorage) GetChange(ctx context.Context, changeID string) (model.FindingsDocument, error) {
	var doc model.FindingsDocument

	if err := validateContext(ctx); err != nil {
		return doc, err
	}
	if err := validateString(changeID, "changeID"); err != nil {
		return doc, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT findings_json FROM changes WHERE change_id = ?`, changeID).Scan(&raw)
	if err == sql.ErrNoRows {
		return doc, fmt.Errorf("change %s: %w", changeID, common.ErrNotFound)
	}
	if err != nil {
		return doc, fmt.Errorf("failed to load change %s: %w", changeID, err)
	}

	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return doc, fmt.Errorf("failed to decode stored findings for %s: %w", changeID, err)
	}

	return doc, nil
}

// ListChanges returns stored runs, newest first.
func (s *SQLiteStorage) ListChanges(ctx context.Context) ([]StoredChange, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT change_id, generated_at, findings_json FROM changes ORDER BY generated_at DESC, change_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var changes []StoredChange
	for rows.Next() {
		var (
			sc  StoredChange
			raw string
		)
		if err := rows.Scan(&sc.ChangeID, &sc.GeneratedAt, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan change row: %w", err)
		}

		var doc model.FindingsDocument
		if err := json.Unmarshal([]byte(raw), &doc); err == nil {
			sc.ObjectsTotal = doc.Summary.ObjectsTotal
			sc.RiskScore = doc.Summary.RiskScore
			sc.RiskLevel = doc.Summary.RiskLevel
		}

		changes = append(changes, sc)
	}

	return changes, rows.Err()
}

// DeleteChange removes a stored run.
func (s *SQLiteStorage) DeleteChange(ctx context.Context, changeID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(changeID, "changeID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM changes WHERE change_id = ?`, changeID)
	if err != nil {
		return fmt.Errorf("failed to delete change %s: %w", changeID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("change %s: %w", changeID, common.ErrNotFound)
	}

	return nil
}

// SiblingChangeSets reconstructs the classified object sets of every
// stored change except excludeID generated at or after since. These are
// the "other in-flight changes" the overlap detector compares against.
func (s *SQLiteStorage) SiblingChangeSets(ctx context.Context, excludeID string, since time.Time) ([]model.ChangeSet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT change_id, findings_json FROM changes
		WHERE change_id <> ? AND generated_at >= ?
		ORDER BY change_id`,
		excludeID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query sibling changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var siblings []model.ChangeSet
	for rows.Next() {
		var (
			changeID string
			raw      string
		)
		if err := rows.Scan(&changeID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan sibling row: %w", err)
		}

		var doc model.FindingsDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			// A corrupt stored row must not poison future analyses.
			continue
		}

		siblings = append(siblings, model.ChangeSet{
			ChangeID: changeID,
			Objects:  doc.Objects,
		})
	}

	return siblings, rows.Err()
}
