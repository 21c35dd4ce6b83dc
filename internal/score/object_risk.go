package score

import (
	"fmt"
	"math"
	"sort"

	"crosscheck/internal/model"
)

// basePoints assigns a base risk weight per object type. Enhancements
// and DDIC changes regress hardest in production, so they start higher.
var basePoints = map[string]float64{
	// reports/programs
	"PROG": 6, "REPS": 6, "REPT": 6,
	// enhancements / exits
	"CMOD": 8, "SMOD": 8, "ENHO": 9, "ENHS": 9, "SPOT": 9,
	// logic
	"CLAS": 7, "INTF": 7, "FUGR": 8, "FUNC": 8,
	// ddic
	"TABL": 10, "VIEW": 9, "DDLS": 9, "DTEL": 5, "DOMA": 5, "TTYP": 5,
}

const defaultBasePoints = 3

// criticalMultiplier bumps objects owned by a high-criticality app.
const criticalMultiplier = 1.3

// ObjectRisks annotates every object in the change with risk points and
// human-readable reasons, sorted by points descending (ties by identity
// for determinism). These annotations feed the exported checklist; the
// aggregate risk score comes from Score.
func ObjectRisks(current model.ChangeSet, findings []model.OverlapFinding, cfg Config) []model.ObjectRisk {
	overlapCounts := make(map[string]int, len(findings))
	for _, f := range findings {
		if f.Kind == model.OverlapExact {
			overlapCounts[f.ObjectIdentity] = len(f.ConflictingChangeIDs)
		}
	}

	risks := make([]model.ObjectRisk, 0, len(current.Objects))
	for _, obj := range current.Objects {
		identity := obj.Identity()
		points := basePoints[obj.Type]
		if points == 0 {
			points = defaultBasePoints
		}

		typeLabel := obj.Type
		if typeLabel == "" {
			typeLabel = "UNK"
		}
		reasons := []string{"type:" + typeLabel}

		if cfg.MaxWeight > 0 && obj.Criticality >= cfg.MaxWeight {
			points *= criticalMultiplier
			reasons = append(reasons, "matched_critical_app")
		}

		switch n := overlapCounts[identity]; {
		case n >= 3:
			points += 9
			reasons = append(reasons, fmt.Sprintf("shared_across_changes(%d)", n))
		case n == 2:
			points += 5
			reasons = append(reasons, "shared_across_changes(2)")
		case n == 1:
			points += 2
			reasons = append(reasons, "shared_across_changes(1)")
		}

		if obj.Ambiguous() {
			points += 2
			reasons = append(reasons, "ambiguous_ownership")
		}

		risks = append(risks, model.ObjectRisk{
			ObjectIdentity: identity,
			Points:         int(math.Round(points)),
			Reasons:        reasons,
		})
	}

	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].Points != risks[j].Points {
			return risks[i].Points > risks[j].Points
		}
		return risks[i].ObjectIdentity < risks[j].ObjectIdentity
	})

	return risks
}
