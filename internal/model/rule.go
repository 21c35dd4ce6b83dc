package model

// OwnershipRule maps an object namespace pattern to an owning application.
// Rules are supplied by the catalog as an ordered set and are never
// mutated by the matcher.
type OwnershipRule struct {
	AppID       string  `json:"app_id" yaml:"app_id"`
	DisplayName string  `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	// MatchPattern is a glob (*, ?) evaluated case-insensitively against
	// a normalized object's MatchKey.
	MatchPattern      string  `json:"match_pattern" yaml:"match_pattern"`
	Priority          int     `json:"priority" yaml:"priority"`
	CriticalityWeight float64 `json:"criticality_weight" yaml:"criticality_weight"`
}
