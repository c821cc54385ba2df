package datadir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateCopiesMissingTarget(t *testing.T) {
	assert := require.New(t)
	bundled := filepath.Join(t.TempDir(), "MigemoSDK")
	assert.NoError(os.MkdirAll(filepath.Join(bundled, "dict", "cp932"), 0755))
	assert.NoError(os.WriteFile(filepath.Join(bundled, "dict", "cp932", "migemo-dict"), []byte("かい\t会\n"), 0644))

	target := filepath.Join(t.TempDir(), "storage", "MigemoSDK")
	assert.NoError(Validate(bundled, target))

	data, err := os.ReadFile(filepath.Join(target, "dict", "cp932", "migemo-dict"))
	assert.NoError(err)
	assert.Equal("かい\t会\n", string(data))
}

func TestValidateKeepsExistingTarget(t *testing.T) {
	assert := require.New(t)
	bundled := t.TempDir()
	assert.NoError(os.WriteFile(filepath.Join(bundled, "migemo-dict"), []byte("new"), 0644))

	target := t.TempDir()
	assert.NoError(os.WriteFile(filepath.Join(target, "migemo-dict"), []byte("edited"), 0644))

	assert.NoError(Validate(bundled, target))
	data, err := os.ReadFile(filepath.Join(target, "migemo-dict"))
	assert.NoError(err)
	assert.Equal("edited", string(data))
}

func TestValidateMissingBundle(t *testing.T) {
	err := Validate(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "target"))
	require.Error(t, err)
}

