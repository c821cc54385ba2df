package launch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type staticTranslator map[string]string

func (s staticTranslator) T(key string) string {
	if message, ok := s[key]; ok {
		return message
	}
	return key
}

func TestExpandArgument(t *testing.T) {
	assert := require.New(t)
	assert.Equal(` /select,"C:\docs\report.pdf"`, ExpandArgument(` /select,"{path}"`, `C:\docs\report.pdf`, `C:\docs`))
	assert.Equal(`"/home/me" --goto "/home/me/a.txt"`, ExpandArgument(`"{dir}" --goto "{path}"`, "/home/me/a.txt", "/home/me"))
	assert.Equal("no placeholders", ExpandArgument("no placeholders", "/a", "/"))
}

func TestOpenMissingFile(t *testing.T) {
	err := SystemOpener{}.Open(filepath.Join(t.TempDir(), "missing.txt"), "")
	require.ErrorIs(t, err, ErrCannotLaunch)
}

func TestRunMissingCommand(t *testing.T) {
	err := SystemRunner{}.Run("migemosearch-no-such-command", `"a b"`)
	require.ErrorIs(t, err, ErrCannotLaunch)
}

func TestDefaultContextMenus(t *testing.T) {
	assert := require.New(t)
	menus := DefaultContextMenus(staticTranslator{"open_containing_folder": "Open containing folder"})
	assert.Len(menus, 1)
	assert.Equal("Open containing folder", menus[0].Name)
	assert.NotEmpty(menus[0].Command)
	assert.Equal(folderImagePath, menus[0].ImagePath)
}
