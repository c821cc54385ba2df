//go:build windows

package launch

import (
	"os/exec"
	"syscall"
)

func openCommand(path string) (string, []string) {
	return "rundll32", []string{"url.dll,FileProtocolHandler", path}
}

// Windows programs parse their own command line, so the argument is passed through untouched.
func commandWithArgument(command string, argument string) (*exec.Cmd, error) {
	cmd := exec.Command(command)
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: syscall.EscapeArg(command) + " " + argument}
	return cmd, nil
}

func defaultFolderCommand() (string, string) {
	return "explorer.exe", ` /select,"{path}"`
}
