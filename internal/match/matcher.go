// Package match resolves application ownership for normalized objects
// against a catalog snapshot.
package match

import (
	"regexp"
	"sort"
	"strings"

	"crosscheck/internal/catalog"
	"crosscheck/internal/model"
)

// Matcher evaluates ownership rules against object match keys. Patterns
// are compiled once at construction; Match is read-only and safe for
// concurrent use.
type Matcher struct {
	snapshot *catalog.Snapshot
	compiled []*regexp.Regexp
}

// NewMatcher creates a matcher for the given catalog snapshot,
// pre-compiling every rule's glob pattern. Rules whose pattern fails to
// compile never match; the catalog validator keeps that from happening
// in practice.
func NewMatcher(snapshot *catalog.Snapshot) *Matcher {
	m := &Matcher{
		snapshot: snapshot,
		compiled: make([]*regexp.Regexp, len(snapshot.Rules)),
	}

	for i, rule := range snapshot.Rules {
		if re, err := compileGlob(rule.MatchPattern); err == nil {
			m.compiled[i] = re
		}
	}

	return m
}

// Match resolves which application(s) own the object. Patterns are
// globs over the package-qualified match key or the bare name, so a rule
// may be written either way; all rules matching either form are
// candidates. The winners are the candidates at the single highest
// priority, ties kept. The returned app IDs are sorted and deduplicated;
// criticality is the maximum weight among the winners (conservative).
//
// An object no rule claims is a valid outcome, not an error: the app set
// is empty and criticality falls back to the snapshot's unowned weight.
func (m *Matcher) Match(obj model.NormalizedObject) ([]string, float64) {
	bestPriority := 0
	var winners []model.OwnershipRule

	for i, rule := range m.snapshot.Rules {
		re := m.compiled[i]
		if re == nil {
			continue
		}
		if !re.MatchString(obj.MatchKey) && !re.MatchString(obj.Name) {
			continue
		}

		switch {
		case winners == nil || rule.Priority > bestPriority:
			winners = []model.OwnershipRule{rule}
			bestPriority = rule.Priority
		case rule.Priority == bestPriority:
			winners = append(winners, rule)
		}
	}

	if len(winners) == 0 {
		return nil, m.snapshot.UnownedWeight
	}

	criticality := 0.0
	seen := make(map[string]struct{}, len(winners))
	appIDs := make([]string, 0, len(winners))
	for _, rule := range winners {
		if rule.CriticalityWeight > criticality {
			criticality = rule.CriticalityWeight
		}
		// Duplicate tuples that slipped past catalog validation degrade
		// gracefully: first occurrence in catalog order wins.
		if _, dup := seen[rule.AppID]; dup {
			continue
		}
		seen[rule.AppID] = struct{}{}
		appIDs = append(appIDs, rule.AppID)
	}
	sort.Strings(appIDs)

	return appIDs, criticality
}

// Classify matches the object and wraps the result into a classified
// object.
func (m *Matcher) Classify(obj model.NormalizedObject) model.ClassifiedObject {
	appIDs, criticality := m.Match(obj)
	return model.ClassifiedObject{
		NormalizedObject: obj,
		MatchedAppIDs:    appIDs,
		Criticality:      criticality,
	}
}

// compileGlob converts a case-insensitive glob (* and ? wildcards) into
// an anchored regexp over the whole match key.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
