package model

import "sort"

// ClassifiedObject is a normalized object together with its resolved
// ownership. Created once per object per analysis run and never mutated
// afterwards.
type ClassifiedObject struct {
	NormalizedObject
	// MatchedAppIDs is sorted and deduplicated. Empty means unowned;
	// more than one entry means ownership is ambiguous (a priority tie).
	MatchedAppIDs []string `json:"matched_app_ids"`
	Criticality   float64  `json:"criticality"`
}

// Unowned reports whether no catalog rule claimed the object.
func (c ClassifiedObject) Unowned() bool {
	return len(c.MatchedAppIDs) == 0
}

// Ambiguous reports whether more than one application claims the object.
func (c ClassifiedObject) Ambiguous() bool {
	return len(c.MatchedAppIDs) > 1
}

// CollectAppIDs returns the sorted, deduplicated set of app IDs matched
// by any object in the slice.
func CollectAppIDs(objects []ClassifiedObject) []string {
	seen := make(map[string]struct{})
	for _, obj := range objects {
		for _, app := range obj.MatchedAppIDs {
			seen[app] = struct{}{}
		}
	}
	apps := make([]string, 0, len(seen))
	for app := range seen {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}

// ChangeSet is the collection of classified objects belonging to one
// deployable change/transport. Read-only during overlap detection.
type ChangeSet struct {
	ChangeID string             `json:"change_id"`
	Objects  []ClassifiedObject `json:"objects"`
}
