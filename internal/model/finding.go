package model

import "time"

// OverlapKind distinguishes the two collision kinds between changes.
type OverlapKind string

// Overlap kinds.
const (
	// OverlapExact means the same object identity appears in both changes.
	OverlapExact OverlapKind = "exact"
	// OverlapAppLevel means different objects share an owning application.
	OverlapAppLevel OverlapKind = "app-level"
)

// OverlapFinding records a collision between an object in the current
// change and one or more sibling changes. At most one finding exists per
// (object identity, kind) pair.
type OverlapFinding struct {
	ObjectIdentity       string      `json:"object_identity"`
	Kind                 OverlapKind `json:"kind"`
	ConflictingChangeIDs []string    `json:"conflicting_change_ids"`
	AppIDs               []string    `json:"app_ids,omitempty"`
}

// RiskLevel buckets a risk score for human consumption.
type RiskLevel string

// Risk levels.
const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// ScoreFactor is one contributing factor of a risk score, exposing both
// the raw factor value and its weighted contribution for auditability.
type ScoreFactor struct {
	Name         string  `json:"name"`
	Raw          float64 `json:"raw"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// RiskScore is the aggregate risk estimate for one change set. Total is
// always within [0,1]. Breakdown order is fixed: overlap, criticality,
// ambiguity.
type RiskScore struct {
	Total     float64       `json:"total"`
	Level     RiskLevel     `json:"level"`
	Breakdown []ScoreFactor `json:"breakdown"`
}

// ObjectRisk annotates a single object with risk points and the reasons
// behind them, for the exported checklist.
type ObjectRisk struct {
	ObjectIdentity string   `json:"object_identity"`
	Points         int      `json:"risk_points"`
	Reasons        []string `json:"reasons"`
}

// SkippedRecord reports an input record that was excluded from the run,
// together with why. Skipped records are surfaced in the findings
// metadata rather than silently dropped.
type SkippedRecord struct {
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// Summary is the headline block of a findings document.
type Summary struct {
	RiskScore     float64   `json:"risk_score"`
	RiskLevel     RiskLevel `json:"risk_level"`
	ObjectsTotal  int       `json:"objects_total"`
	AppsImpacted  int       `json:"apps_impacted"`
	OverlapsFound int       `json:"overlaps_found"`
}

// Metadata describes the analysis run that produced a findings document.
type Metadata struct {
	RunID          string          `json:"run_id"`
	GeneratedAt    time.Time       `json:"generated_at"`
	CatalogVersion string          `json:"catalog_version"`
	SkippedRecords []SkippedRecord `json:"skipped_records,omitempty"`
}

// FindingsDocument is the sole externally consumed output of an analysis
// run, aggregating the change set, classifications, overlaps and score.
type FindingsDocument struct {
	ChangeID    string             `json:"change_id"`
	Meta        Metadata           `json:"meta"`
	Summary     Summary            `json:"summary"`
	Objects     []ClassifiedObject `json:"objects"`
	Overlaps    []OverlapFinding   `json:"overlaps"`
	Score       RiskScore          `json:"score"`
	ObjectRisks []ObjectRisk       `json:"object_risks"`
}

// ImpactedAppIDs returns the sorted set of applications owning at least
// one object in the document.
func (d FindingsDocument) ImpactedAppIDs() []string {
	return CollectAppIDs(d.Objects)
}
