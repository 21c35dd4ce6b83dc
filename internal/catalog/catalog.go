// Package catalog loads and validates the application ownership catalog.
//
// A loaded catalog is an immutable, version-stamped snapshot. Reloading
// produces a brand-new snapshot; nothing is ever mutated in place, so
// snapshots are safe to share across concurrent classification.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"crosscheck/internal/common"
	"crosscheck/internal/model"
)

// DefaultUnownedWeight is the criticality assigned to objects no rule
// claims. It must stay above zero: unowned objects carry analysis risk.
const DefaultUnownedWeight = 1.0

// File is the on-disk catalog shape.
type File struct {
	Version              string                `json:"version" yaml:"version"`
	DefaultUnownedWeight float64               `json:"default_unowned_weight,omitempty" yaml:"default_unowned_weight,omitempty"`
	Rules                []model.OwnershipRule `json:"rules" yaml:"rules"`
}

// Snapshot is an immutable, stamped rule set handed to the matcher.
type Snapshot struct {
	// Version identifies the rule content (sha256 over the canonical
	// encoding), so runs can record exactly which catalog they used.
	Version  string
	LoadedAt time.Time
	Rules    []model.OwnershipRule
	// MaxWeight is the largest criticality weight in the catalog, used
	// to normalize the criticality score factor.
	MaxWeight float64
	// UnownedWeight is the criticality assigned to unmatched objects.
	UnownedWeight float64
}

// Load reads a catalog from a JSON or YAML file (by extension) and
// validates it. Validation failures are fatal.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	}

	return New(file)
}

// New validates a catalog file and stamps it into a snapshot.
func New(file File) (*Snapshot, error) {
	if err := validate(file); err != nil {
		return nil, err
	}

	rules := make([]model.OwnershipRule, len(file.Rules))
	copy(rules, file.Rules)

	maxWeight := 0.0
	for _, r := range rules {
		if r.CriticalityWeight > maxWeight {
			maxWeight = r.CriticalityWeight
		}
	}

	unowned := file.DefaultUnownedWeight
	if unowned == 0 {
		unowned = DefaultUnownedWeight
	}

	return &Snapshot{
		Version:       stamp(rules),
		LoadedAt:      time.Now().UTC(),
		Rules:         rules,
		MaxWeight:     maxWeight,
		UnownedWeight: unowned,
	}, nil
}

func validate(file File) error {
	seen := make(map[string]struct{}, len(file.Rules))
	for i, r := range file.Rules {
		if r.AppID == "" {
			return fmt.Errorf("%w: rule %d has no app_id", common.ErrCatalogInconsistency, i)
		}
		if r.MatchPattern == "" {
			return fmt.Errorf("%w: rule %d (%s) has no match_pattern", common.ErrCatalogInconsistency, i, r.AppID)
		}
		if r.CriticalityWeight < 0 {
			return fmt.Errorf("%w: rule %d (%s) has negative criticality_weight", common.ErrCatalogInconsistency, i, r.AppID)
		}

		// Duplicate (app, pattern, priority) tuples would make matching
		// non-deterministic.
		key := fmt.Sprintf("%s\x00%s\x00%d", r.AppID, strings.ToUpper(r.MatchPattern), r.Priority)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate rule (app=%s pattern=%s priority=%d)",
				common.ErrCatalogInconsistency, r.AppID, r.MatchPattern, r.Priority)
		}
		seen[key] = struct{}{}
	}

	if file.DefaultUnownedWeight < 0 {
		return fmt.Errorf("%w: default_unowned_weight must be > 0", common.ErrCatalogInconsistency)
	}

	return nil
}

// stamp hashes the canonical rule encoding into a version identifier.
func stamp(rules []model.OwnershipRule) string {
	h := sha256.New()
	for _, r := range rules {
		fmt.Fprintf(h, "%s|%s|%d|%g\n", r.AppID, r.MatchPattern, r.Priority, r.CriticalityWeight)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
