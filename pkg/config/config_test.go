package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liebero3/schild2jamf/pkg/schema"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
orgPrefix: "164501"
emailDomain: 164501.nrw.schule
strategy: group-id
classLabels: [05A, 05B, 07D]
studentSupplementaryGroups:
  - iPads-Koffer-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "164501", cfg.OrgPrefix)
	assert.Equal(t, schema.StrategyGroupID, cfg.Strategy)
	assert.Equal(t, []string{"05A", "05B", "07D"}, cfg.ClassLabels)
	assert.Equal(t, []string{"iPads-Koffer-1"}, cfg.StudentSupplementaryGroups)
	// Fields absent from the file keep their defaults.
	assert.NotEmpty(t, cfg.StaffSupplementaryGroups)
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, "strategy: inheritance\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy")
}

func TestLoadRejectsEmptyOrgPrefix(t *testing.T) {
	path := writeConfig(t, "orgPrefix: \"\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orgPrefix")
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().validate())
}
