package findings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/internal/common"
	"crosscheck/internal/model"
)

func classified(name string, apps ...string) model.ClassifiedObject {
	return model.ClassifiedObject{
		NormalizedObject: model.NormalizedObject{Class: "R3TR", Type: "PROG", Name: name, MatchKey: name},
		MatchedAppIDs:    apps,
		Criticality:      0.5,
	}
}

func TestAggregate(t *testing.T) {
	objA := classified("ZA", "APP1")
	objB := classified("ZB", "APP1", "APP2")
	changeSet := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{objA, objB}}
	overlaps := []model.OverlapFinding{
		{ObjectIdentity: objA.Identity(), Kind: model.OverlapExact, ConflictingChangeIDs: []string{"S1"}},
	}
	riskScore := model.RiskScore{Total: 0.4, Level: model.RiskMedium}
	objectRisks := []model.ObjectRisk{
		{ObjectIdentity: objB.Identity(), Points: 8},
		{ObjectIdentity: objA.Identity(), Points: 6},
	}
	meta := model.Metadata{
		RunID:          "run-1",
		GeneratedAt:    time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		CatalogVersion: "abc",
		SkippedRecords: []model.SkippedRecord{{Raw: "garbage", Reason: "missing object name"}},
	}

	doc, err := Aggregate(changeSet, changeSet.Objects, overlaps, riskScore, objectRisks, meta)
	require.NoError(t, err)

	assert.Equal(t, "CHG-1", doc.ChangeID)
	assert.Equal(t, meta, doc.Meta)
	assert.Equal(t, overlaps, doc.Overlaps, "overlap ordering must be preserved")
	assert.Equal(t, objectRisks, doc.ObjectRisks, "risk ordering must be preserved")

	assert.Equal(t, model.Summary{
		RiskScore:     0.4,
		RiskLevel:     model.RiskMedium,
		ObjectsTotal:  2,
		AppsImpacted:  2,
		OverlapsFound: 1,
	}, doc.Summary)

	assert.Equal(t, []string{"APP1", "APP2"}, doc.ImpactedAppIDs())
}

func TestAggregate_ContractViolations(t *testing.T) {
	obj := classified("ZA", "APP1")
	changeSet := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{obj}}

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "overlap references unknown identity",
			run: func() error {
				_, err := Aggregate(changeSet, changeSet.Objects, []model.OverlapFinding{
					{ObjectIdentity: "R3TR:PROG:GHOST", Kind: model.OverlapExact},
				}, model.RiskScore{}, nil, model.Metadata{})
				return err
			},
		},
		{
			name: "object risk references unknown identity",
			run: func() error {
				_, err := Aggregate(changeSet, changeSet.Objects, nil, model.RiskScore{},
					[]model.ObjectRisk{{ObjectIdentity: "R3TR:PROG:GHOST"}}, model.Metadata{})
				return err
			},
		},
		{
			name: "classified list length mismatch",
			run: func() error {
				_, err := Aggregate(changeSet, nil, nil, model.RiskScore{}, nil, model.Metadata{})
				return err
			},
		},
		{
			name: "classified list content mismatch",
			run: func() error {
				other := classified("ZOTHER", "APP1")
				_, err := Aggregate(changeSet, []model.ClassifiedObject{other}, nil, model.RiskScore{}, nil, model.Metadata{})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, common.IsContractViolation(err), "expected contract violation, got %v", err)
		})
	}
}
