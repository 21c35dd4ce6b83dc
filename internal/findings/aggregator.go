// Package findings assembles the output document of an analysis run.
package findings

import (
	"fmt"

	"crosscheck/internal/common"
	"crosscheck/internal/model"
)

// Aggregate assembles a findings document from the pipeline outputs. It
// performs no computation and preserves the ordering guarantees of the
// overlap detector and scorer.
//
// A structurally inconsistent input (a finding or risk annotation
// referencing an identity absent from the classified objects, or a
// change-set/object mismatch) is a contract violation: a bug in the
// pipeline, not a data error. It returns a fatal error the caller must
// not swallow.
func Aggregate(
	changeSet model.ChangeSet,
	classified []model.ClassifiedObject,
	overlaps []model.OverlapFinding,
	riskScore model.RiskScore,
	objectRisks []model.ObjectRisk,
	meta model.Metadata,
) (model.FindingsDocument, error) {
	if len(changeSet.Objects) != len(classified) {
		return model.FindingsDocument{}, common.NewContractViolation(
			"change set matches classified objects",
			fmt.Sprintf("change set has %d objects, classified list has %d", len(changeSet.Objects), len(classified)),
		)
	}

	identities := make(map[string]struct{}, len(classified))
	for i, obj := range classified {
		if changeSet.Objects[i].Identity() != obj.Identity() {
			return model.FindingsDocument{}, common.NewContractViolation(
				"change set matches classified objects",
				fmt.Sprintf("object %d: %s != %s", i, changeSet.Objects[i].Identity(), obj.Identity()),
			)
		}
		identities[obj.Identity()] = struct{}{}
	}

	for _, f := range overlaps {
		if _, ok := identities[f.ObjectIdentity]; !ok {
			return model.FindingsDocument{}, common.NewContractViolation(
				"overlap findings reference classified objects",
				"unknown identity "+f.ObjectIdentity,
			)
		}
	}
	for _, r := range objectRisks {
		if _, ok := identities[r.ObjectIdentity]; !ok {
			return model.FindingsDocument{}, common.NewContractViolation(
				"object risks reference classified objects",
				"unknown identity "+r.ObjectIdentity,
			)
		}
	}

	doc := model.FindingsDocument{
		ChangeID:    changeSet.ChangeID,
		Meta:        meta,
		Objects:     classified,
		Overlaps:    overlaps,
		Score:       riskScore,
		ObjectRisks: objectRisks,
	}
	doc.Summary = model.Summary{
		RiskScore:     riskScore.Total,
		RiskLevel:     riskScore.Level,
		ObjectsTotal:  len(classified),
		AppsImpacted:  len(model.CollectAppIDs(classified)),
		OverlapsFound: len(overlaps),
	}

	return doc, nil
}
