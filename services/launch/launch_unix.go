//go:build !windows

package launch

import (
	"os/exec"
	"runtime"

	"github.com/google/shlex"
)

func openCommand(path string) (string, []string) {
	if runtime.GOOS == "darwin" {
		return "open", []string{path}
	}
	return "xdg-open", []string{path}
}

func commandWithArgument(command string, argument string) (*exec.Cmd, error) {
	args, err := shlex.Split(argument)
	if err != nil {
		return nil, err
	}
	return exec.Command(command, args...), nil
}

func defaultFolderCommand() (string, string) {
	if runtime.GOOS == "darwin" {
		return "open", `-R "{path}"`
	}
	return "xdg-open", `"{dir}"`
}
