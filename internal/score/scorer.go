// Package score aggregates classification and overlap signals into an
// explainable risk score.
package score

import (
	"math"

	"crosscheck/internal/model"
)

// Factor names, in the fixed breakdown order.
const (
	FactorOverlap     = "overlap"
	FactorCriticality = "criticality"
	FactorAmbiguity   = "ambiguity"
)

// Risk level bands on the [0,1] scale.
const (
	highThreshold   = 0.75
	mediumThreshold = 0.40
)

// appLevelWeight discounts app-level overlaps relative to exact ones.
const appLevelWeight = 0.5

// Weights configures the relative contribution of each score factor.
type Weights struct {
	Overlap     float64
	Criticality float64
	Ambiguity   float64
}

// DefaultWeights splits the three factors into equal thirds.
func DefaultWeights() Weights {
	return Weights{Overlap: 1.0 / 3.0, Criticality: 1.0 / 3.0, Ambiguity: 1.0 / 3.0}
}

// Config carries the scoring configuration for one run.
type Config struct {
	Weights Weights
	// MaxWeight is the largest criticality weight in the active catalog,
	// used to normalize the criticality factor into [0,1].
	MaxWeight float64
}

// Score computes the risk score for the current change set given its
// overlap findings. Deterministic: the same inputs always produce the
// same score, and the breakdown always lists overlap, criticality,
// ambiguity in that order. Total is clamped to [0,1].
func Score(current model.ChangeSet, findings []model.OverlapFinding, cfg Config) model.RiskScore {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}

	total := len(current.Objects)

	overlapRaw := overlapFactor(current, findings, total)
	criticalityRaw := criticalityFactor(current, cfg.MaxWeight, total)
	ambiguityRaw := ambiguityFactor(current, total)

	breakdown := []model.ScoreFactor{
		{Name: FactorOverlap, Raw: overlapRaw, Weight: cfg.Weights.Overlap, Contribution: overlapRaw * cfg.Weights.Overlap},
		{Name: FactorCriticality, Raw: criticalityRaw, Weight: cfg.Weights.Criticality, Contribution: criticalityRaw * cfg.Weights.Criticality},
		{Name: FactorAmbiguity, Raw: ambiguityRaw, Weight: cfg.Weights.Ambiguity, Contribution: ambiguityRaw * cfg.Weights.Ambiguity},
	}

	sum := 0.0
	for _, f := range breakdown {
		sum += f.Contribution
	}
	sum = clamp01(sum)

	return model.RiskScore{
		Total:     sum,
		Level:     level(sum),
		Breakdown: breakdown,
	}
}

// overlapFactor is the proportion of objects appearing in at least one
// finding, exact findings at full weight and app-level at half.
func overlapFactor(current model.ChangeSet, findings []model.OverlapFinding, total int) float64 {
	if total == 0 {
		return 0
	}

	// Exact dominates when an identity somehow carries both kinds.
	weights := make(map[string]float64, len(findings))
	for _, f := range findings {
		w := appLevelWeight
		if f.Kind == model.OverlapExact {
			w = 1.0
		}
		if w > weights[f.ObjectIdentity] {
			weights[f.ObjectIdentity] = w
		}
	}

	sum := 0.0
	counted := make(map[string]struct{}, total)
	for _, obj := range current.Objects {
		identity := obj.Identity()
		if _, dup := counted[identity]; dup {
			continue
		}
		counted[identity] = struct{}{}
		sum += weights[identity]
	}

	return sum / float64(total)
}

// criticalityFactor is the mean criticality normalized against the
// catalog's maximum weight.
func criticalityFactor(current model.ChangeSet, maxWeight float64, total int) float64 {
	if total == 0 || maxWeight <= 0 {
		return 0
	}

	sum := 0.0
	for _, obj := range current.Objects {
		sum += obj.Criticality
	}

	return clamp01(sum / float64(total) / maxWeight)
}

// ambiguityFactor is the proportion of objects claimed by more than one
// application.
func ambiguityFactor(current model.ChangeSet, total int) float64 {
	if total == 0 {
		return 0
	}

	ambiguous := 0
	for _, obj := range current.Objects {
		if obj.Ambiguous() {
			ambiguous++
		}
	}

	return float64(ambiguous) / float64(total)
}

func level(total float64) model.RiskLevel {
	switch {
	case total >= highThreshold:
		return model.RiskHigh
	case total >= mediumThreshold:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
