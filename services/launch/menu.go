package launch

import (
	"github.com/meghashyamc/migemosearch/services/i18n"
	"github.com/meghashyamc/migemosearch/services/settings"
)

const folderImagePath = "Images/folder.png"

// DefaultContextMenus lists the entries offered before the user's own.
func DefaultContextMenus(translator i18n.Translator) []settings.ContextMenu {
	command, argument := defaultFolderCommand()
	return []settings.ContextMenu{
		{
			Name:      translator.T("open_containing_folder"),
			Command:   command,
			Argument:  argument,
			ImagePath: folderImagePath,
		},
	}
}
