// Package overlap computes collision findings between the current change
// set and other in-flight change sets.
package overlap

import (
	"sort"

	"crosscheck/internal/model"
)

// Detect runs the two overlap passes against the sibling change sets.
//
// Exact-key pass: every object identity present both in current and in
// at least one sibling yields an exact finding listing every sibling
// containing it. App-level pass: objects not already covered by an exact
// finding whose owning app(s) also own objects in a sibling yield an
// app-level finding. Unowned objects are excluded from the app-level
// pass only.
//
// Output is stable: findings are grouped per object in the order the
// objects appear in current.Objects, with conflicting change IDs sorted.
// At most one finding exists per (identity, kind) pair.
func Detect(current model.ChangeSet, others []model.ChangeSet) []model.OverlapFinding {
	identityChanges := make(map[string][]string)
	appChanges := make(map[string][]string)
	for _, sibling := range others {
		siblingApps := make(map[string]struct{})
		for _, obj := range sibling.Objects {
			identity := obj.Identity()
			if !contains(identityChanges[identity], sibling.ChangeID) {
				identityChanges[identity] = append(identityChanges[identity], sibling.ChangeID)
			}
			for _, app := range obj.MatchedAppIDs {
				siblingApps[app] = struct{}{}
			}
		}
		for app := range siblingApps {
			appChanges[app] = append(appChanges[app], sibling.ChangeID)
		}
	}

	var findings []model.OverlapFinding
	emitted := make(map[string]struct{}, len(current.Objects))

	for _, obj := range current.Objects {
		identity := obj.Identity()
		if _, done := emitted[identity]; done {
			continue
		}
		emitted[identity] = struct{}{}

		if changeIDs := identityChanges[identity]; len(changeIDs) > 0 {
			findings = append(findings, model.OverlapFinding{
				ObjectIdentity:       identity,
				Kind:                 model.OverlapExact,
				ConflictingChangeIDs: sortedUnique(changeIDs),
				AppIDs:               obj.MatchedAppIDs,
			})
			continue
		}

		// Unowned objects cannot collide on ownership.
		if obj.Unowned() {
			continue
		}

		var conflicting []string
		var sharedApps []string
		for _, app := range obj.MatchedAppIDs {
			if changeIDs := appChanges[app]; len(changeIDs) > 0 {
				conflicting = append(conflicting, changeIDs...)
				sharedApps = append(sharedApps, app)
			}
		}
		if len(conflicting) > 0 {
			findings = append(findings, model.OverlapFinding{
				ObjectIdentity:       identity,
				Kind:                 model.OverlapAppLevel,
				ConflictingChangeIDs: sortedUnique(conflicting),
				AppIDs:               sharedApps,
			})
		}
	}

	return findings
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
