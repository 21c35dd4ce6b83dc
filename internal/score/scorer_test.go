package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/internal/model"
)

func classified(name string, criticality float64, apps ...string) model.ClassifiedObject {
	return model.ClassifiedObject{
		NormalizedObject: model.NormalizedObject{Class: "R3TR", Type: "PROG", Name: name, MatchKey: name},
		MatchedAppIDs:    apps,
		Criticality:      criticality,
	}
}

func exactFinding(obj model.ClassifiedObject, changeIDs ...string) model.OverlapFinding {
	return model.OverlapFinding{
		ObjectIdentity:       obj.Identity(),
		Kind:                 model.OverlapExact,
		ConflictingChangeIDs: changeIDs,
		AppIDs:               obj.MatchedAppIDs,
	}
}

func TestScore_SingleExactOverlap(t *testing.T) {
	// Two objects owned by APP1 at criticality 0.5, one overlapping
	// exactly with sibling S1, catalog max weight 0.5.
	objA := classified("ZREPORT_A", 0.5, "APP1")
	objB := classified("ZREPORT_B", 0.5, "APP1")
	current := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{objA, objB}}
	findings := []model.OverlapFinding{exactFinding(objA, "S1")}

	got := Score(current, findings, Config{MaxWeight: 0.5})

	require.Len(t, got.Breakdown, 3)
	assert.Equal(t, FactorOverlap, got.Breakdown[0].Name)
	assert.Equal(t, FactorCriticality, got.Breakdown[1].Name)
	assert.Equal(t, FactorAmbiguity, got.Breakdown[2].Name)

	assert.InDelta(t, 0.5, got.Breakdown[0].Raw, 1e-9, "1 of 2 objects overlaps exactly")
	assert.InDelta(t, 1.0, got.Breakdown[1].Raw, 1e-9, "mean criticality 0.5 over max weight 0.5")
	assert.InDelta(t, 0.0, got.Breakdown[2].Raw, 1e-9, "no ambiguous ownership")

	wantTotal := (0.5 + 1.0 + 0.0) / 3.0
	assert.InDelta(t, wantTotal, got.Total, 1e-9)
	assert.Equal(t, model.RiskMedium, got.Level)
}

func TestScore_AppLevelOverlapHalfWeight(t *testing.T) {
	objA := classified("ZA", 0.2, "APP1")
	objB := classified("ZB", 0.2, "APP1")
	current := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{objA, objB}}
	findings := []model.OverlapFinding{
		{ObjectIdentity: objA.Identity(), Kind: model.OverlapAppLevel, ConflictingChangeIDs: []string{"S1"}},
	}

	got := Score(current, findings, Config{MaxWeight: 1})
	assert.InDelta(t, 0.25, got.Breakdown[0].Raw, 1e-9, "half weight for 1 of 2 objects")
}

func TestScore_AmbiguityFactor(t *testing.T) {
	current := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{
		classified("ZA", 0.5, "APP1", "APP2"),
		classified("ZB", 0.5, "APP1"),
	}}

	got := Score(current, nil, Config{MaxWeight: 1})
	assert.InDelta(t, 0.5, got.Breakdown[2].Raw, 1e-9, "1 of 2 objects ambiguous")
}

func TestScore_CustomWeights(t *testing.T) {
	objA := classified("ZA", 1, "APP1")
	current := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{objA}}
	findings := []model.OverlapFinding{exactFinding(objA, "S1")}

	got := Score(current, findings, Config{
		Weights:   Weights{Overlap: 1, Criticality: 0, Ambiguity: 0},
		MaxWeight: 1,
	})

	assert.InDelta(t, 1.0, got.Total, 1e-9)
	assert.Equal(t, model.RiskHigh, got.Level)
}

func TestScore_BoundsAndDeterminism(t *testing.T) {
	var objects []model.ClassifiedObject
	var findings []model.OverlapFinding
	for i := 0; i < 50; i++ {
		obj := classified(string(rune('A'+i%26))+"X", 5.0, "APP1", "APP2")
		objects = append(objects, obj)
		findings = append(findings, exactFinding(obj, "S1", "S2", "S3"))
	}
	current := model.ChangeSet{ChangeID: "CHG-1", Objects: objects}

	first := Score(current, findings, Config{MaxWeight: 0.1})
	assert.GreaterOrEqual(t, first.Total, 0.0)
	assert.LessOrEqual(t, first.Total, 1.0)

	second := Score(current, findings, Config{MaxWeight: 0.1})
	assert.Equal(t, first, second, "same inputs must score identically")
}

func TestScore_EmptyChangeSet(t *testing.T) {
	got := Score(model.ChangeSet{ChangeID: "CHG-1"}, nil, Config{MaxWeight: 1})
	assert.InDelta(t, 0, got.Total, 1e-9)
	assert.Equal(t, model.RiskLow, got.Level)
	require.Len(t, got.Breakdown, 3)
}

func TestScore_ZeroMaxWeightGuards(t *testing.T) {
	current := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{
		classified("ZA", 1.0, "APP1"),
	}}

	got := Score(current, nil, Config{MaxWeight: 0})
	assert.InDelta(t, 0, got.Breakdown[1].Raw, 1e-9)
}

func TestObjectRisks(t *testing.T) {
	tabl := model.ClassifiedObject{
		NormalizedObject: model.NormalizedObject{Class: "R3TR", Type: "TABL", Name: "ZTAB", MatchKey: "ZTAB"},
		MatchedAppIDs:    []string{"APP1"},
		Criticality:      0.9,
	}
	prog := model.ClassifiedObject{
		NormalizedObject: model.NormalizedObject{Class: "R3TR", Type: "PROG", Name: "ZREP", MatchKey: "ZREP"},
		MatchedAppIDs:    []string{"APP1", "APP2"},
		Criticality:      0.5,
	}
	current := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{prog, tabl}}
	findings := []model.OverlapFinding{exactFinding(tabl, "S1")}

	risks := ObjectRisks(current, findings, Config{MaxWeight: 0.9})
	require.Len(t, risks, 2)

	// TABL base 10 * 1.3 critical multiplier + 2 overlap bonus = 15.
	assert.Equal(t, "R3TR:TABL:ZTAB", risks[0].ObjectIdentity)
	assert.Equal(t, 15, risks[0].Points)
	assert.Contains(t, risks[0].Reasons, "type:TABL")
	assert.Contains(t, risks[0].Reasons, "matched_critical_app")
	assert.Contains(t, risks[0].Reasons, "shared_across_changes(1)")

	// PROG base 6 + 2 ambiguity bonus = 8, sorted after the table.
	assert.Equal(t, "R3TR:PROG:ZREP", risks[1].ObjectIdentity)
	assert.Equal(t, 8, risks[1].Points)
	assert.Contains(t, risks[1].Reasons, "ambiguous_ownership")
}

func TestObjectRisks_UnknownTypeGetsDefaultBase(t *testing.T) {
	obj := model.ClassifiedObject{
		NormalizedObject: model.NormalizedObject{Class: "R3TR", Type: "WXYZ", Name: "X", MatchKey: "X", UnknownType: true},
	}
	current := model.ChangeSet{ChangeID: "CHG-1", Objects: []model.ClassifiedObject{obj}}

	risks := ObjectRisks(current, nil, Config{MaxWeight: 1})
	require.Len(t, risks, 1)
	assert.Equal(t, defaultBasePoints, risks[0].Points)
	assert.Contains(t, risks[0].Reasons, "type:WXYZ")
}
