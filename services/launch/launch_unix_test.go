//go:build !windows

package launch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandWithArgumentSplitsQuoted(t *testing.T) {
	assert := require.New(t)
	cmd, err := commandWithArgument("code", `--goto "/tmp/my file.txt"`)
	assert.NoError(err)
	assert.Equal([]string{"code", "--goto", "/tmp/my file.txt"}, cmd.Args)
}

func TestCommandWithArgumentUnterminatedQuote(t *testing.T) {
	_, err := commandWithArgument("code", `"/tmp/unterminated`)
	require.Error(t, err)
}
