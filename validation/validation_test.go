package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meghashyamc/migemosearch/logger"
	"github.com/stretchr/testify/require"
)

type indexInput struct {
	Path           string   `json:"path" validate:"required,valid_path"`
	ExcludeFolders []string `json:"exclude_folders" validate:"dive,valid_path"`
}

type searchInput struct {
	Query string `form:"query" validate:"required,valid_query,valid_pattern,min=1,max=10"`
	Max   int    `form:"max" validate:"min=0,max=1000"`
}

func TestValidateIndexInput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name        string
		input       indexInput
		expectedErr error
		errContains string
	}{
		{name: "directory", input: indexInput{Path: dir}},
		{name: "with excluded folders", input: indexInput{Path: dir, ExcludeFolders: []string{dir}}},
		{name: "missing path", input: indexInput{}, errContains: "missing required field 'path'"},
		{name: "relative path", input: indexInput{Path: "docs"}, expectedErr: ErrInvalidPath},
		{name: "file instead of directory", input: indexInput{Path: file}, expectedErr: ErrInvalidPath},
		{name: "does not exist", input: indexInput{Path: filepath.Join(dir, "missing")}, expectedErr: ErrInvalidPath},
		{name: "null byte", input: indexInput{Path: dir + "\x00"}, expectedErr: ErrInvalidPath},
		{name: "bad excluded folder", input: indexInput{Path: dir, ExcludeFolders: []string{"relative"}}, expectedErr: ErrInvalidPath},
	}

	v, err := New(logger.Discard())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)
			err := v.Validate(tt.input)
			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(err, tt.expectedErr)
			case tt.errContains != "":
				assert.ErrorContains(err, tt.errContains)
			default:
				assert.NoError(err)
			}
		})
	}
}

func TestValidateSearchInput(t *testing.T) {
	tests := []struct {
		name        string
		input       searchInput
		expectedErr error
		errContains string
	}{
		{name: "literal", input: searchInput{Query: "kaisha"}},
		{name: "compiling pattern", input: searchInput{Query: "@(かい|kai)"}},
		{name: "blank", input: searchInput{Query: "   "}, expectedErr: ErrInvalidQuery},
		{name: "pattern does not compile", input: searchInput{Query: "@(kai"}, expectedErr: ErrInvalidPattern},
		{name: "too long", input: searchInput{Query: "kaishakaisha"}, errContains: "field 'query'"},
		{name: "max out of range", input: searchInput{Query: "kai", Max: 1001}, errContains: "field 'max'"},
	}

	v, err := New(logger.Discard())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)
			err := v.Validate(tt.input)
			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(err, tt.expectedErr)
			case tt.errContains != "":
				assert.ErrorContains(err, tt.errContains)
			default:
				assert.NoError(err)
			}
		})
	}
}
