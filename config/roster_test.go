package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdesk/promocast/config"
	"github.com/shopdesk/promocast/tg"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "departments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRoster(t *testing.T) {
	path := writeRoster(t, `
departments:
  - id: mkt
    name: Marketing
    chat_id: "-100200300"
  - name: Sales
    chat_id: "@shopdesk_sales"
  - id: archive
    name: Archive
    chat_id: "-100400500"
    active: false
`)

	targets, err := config.LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	assert.Equal(t, "mkt", targets[0].ID)
	assert.Equal(t, "Marketing", targets[0].Name)
	assert.Equal(t, "-100200300", targets[0].ChatID)
	assert.True(t, targets[0].Active, "active defaults to true")

	// Missing id falls back to the name.
	assert.Equal(t, "Sales", targets[1].ID)
	assert.Equal(t, "@shopdesk_sales", targets[1].ChatID)
	assert.True(t, targets[1].Active)

	assert.False(t, targets[2].Active)
}

func TestLoadRosterRejectsNamelessEntry(t *testing.T) {
	path := writeRoster(t, `
departments:
  - chat_id: "-100200300"
`)

	_, err := config.LoadRoster(path)
	var verr *tg.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "departments", verr.Field)
}

func TestLoadRosterRejectsDuplicateID(t *testing.T) {
	path := writeRoster(t, `
departments:
  - id: mkt
    name: Marketing
  - id: mkt
    name: Marketing Again
`)

	_, err := config.LoadRoster(path)
	var verr *tg.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestLoadRosterMissingFile(t *testing.T) {
	_, err := config.LoadRoster(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
