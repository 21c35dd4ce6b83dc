package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosscheck/internal/common"
	"crosscheck/internal/model"
)

func TestNew_ValidCatalog(t *testing.T) {
	snapshot, err := New(File{
		Version: "1",
		Rules: []model.OwnershipRule{
			{AppID: "FIN", MatchPattern: "ZFI_*", Priority: 2, CriticalityWeight: 0.8},
			{AppID: "HR", MatchPattern: "YHR_*", Priority: 1, CriticalityWeight: 0.4},
		},
	})
	require.NoError(t, err)

	assert.Len(t, snapshot.Rules, 2)
	assert.InDelta(t, 0.8, snapshot.MaxWeight, 1e-9)
	assert.InDelta(t, DefaultUnownedWeight, snapshot.UnownedWeight, 1e-9)
	assert.NotEmpty(t, snapshot.Version)
	assert.False(t, snapshot.LoadedAt.IsZero())
}

func TestNew_VersionTracksRuleContent(t *testing.T) {
	rules := []model.OwnershipRule{
		{AppID: "FIN", MatchPattern: "ZFI_*", Priority: 1, CriticalityWeight: 0.5},
	}

	a, err := New(File{Rules: rules})
	require.NoError(t, err)

	b, err := New(File{Rules: rules})
	require.NoError(t, err)
	assert.Equal(t, a.Version, b.Version, "same rules must stamp the same version")

	c, err := New(File{Rules: []model.OwnershipRule{
		{AppID: "FIN", MatchPattern: "ZFI_*", Priority: 2, CriticalityWeight: 0.5},
	}})
	require.NoError(t, err)
	assert.NotEqual(t, a.Version, c.Version, "different rules must stamp different versions")
}

func TestNew_RejectsDuplicateRuleTuples(t *testing.T) {
	_, err := New(File{
		Rules: []model.OwnershipRule{
			{AppID: "FIN", MatchPattern: "ZFI_*", Priority: 1, CriticalityWeight: 0.5},
			{AppID: "FIN", MatchPattern: "zfi_*", Priority: 1, CriticalityWeight: 0.7},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCatalogInconsistency)
}

func TestNew_AllowsSameAppDifferentPriority(t *testing.T) {
	_, err := New(File{
		Rules: []model.OwnershipRule{
			{AppID: "FIN", MatchPattern: "ZFI_*", Priority: 1, CriticalityWeight: 0.5},
			{AppID: "FIN", MatchPattern: "ZFI_*", Priority: 2, CriticalityWeight: 0.5},
		},
	})
	assert.NoError(t, err)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{
			name: "missing app id",
			file: File{Rules: []model.OwnershipRule{{MatchPattern: "Z*", Priority: 1}}},
		},
		{
			name: "missing pattern",
			file: File{Rules: []model.OwnershipRule{{AppID: "FIN", Priority: 1}}},
		},
		{
			name: "negative criticality",
			file: File{Rules: []model.OwnershipRule{{AppID: "FIN", MatchPattern: "Z*", CriticalityWeight: -1}}},
		},
		{
			name: "negative unowned weight",
			file: File{DefaultUnownedWeight: -0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.file)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrCatalogInconsistency)
		})
	}
}

func TestLoad_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"version": "1",
		"default_unowned_weight": 0.25,
		"rules": [
			{"app_id": "FIN", "match_pattern": "ZFI_*", "priority": 2, "criticality_weight": 0.8}
		]
	}`), 0600))

	yamlPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
version: "1"
default_unowned_weight: 0.25
rules:
  - app_id: FIN
    match_pattern: "ZFI_*"
    priority: 2
    criticality_weight: 0.8
`), 0600))

	fromJSON, err := Load(jsonPath)
	require.NoError(t, err)

	fromYAML, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Rules, fromYAML.Rules)
	assert.Equal(t, fromJSON.Version, fromYAML.Version)
	assert.InDelta(t, 0.25, fromJSON.UnownedWeight, 1e-9)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
