package launch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrCannotLaunch marks failures the user should be told about instead of the host.
var ErrCannotLaunch = errors.New("cannot launch")

type Opener interface {
	// Open hands path to the platform's default handler. An empty workingDir keeps the current one.
	Open(path string, workingDir string) error
}

type Runner interface {
	Run(command string, argument string) error
}

type Clipboard interface {
	WriteAll(text string) error
}

type Notifier interface {
	ShowMsg(title string, subTitle string)
}

type SystemOpener struct{}

func (SystemOpener) Open(path string, workingDir string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrCannotLaunch, err.Error())
	}

	name, args := openCommand(path)
	cmd := exec.Command(name, args...)
	cmd.Dir = workingDir
	return start(cmd)
}

type SystemRunner struct{}

// Run starts command with argument split the way the platform shell would.
func (SystemRunner) Run(command string, argument string) error {
	cmd, err := commandWithArgument(command, argument)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCannotLaunch, err.Error())
	}
	return start(cmd)
}

type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// ExpandArgument fills {path} and {dir} in a context menu argument template.
func ExpandArgument(template string, path string, dir string) string {
	return strings.NewReplacer("{path}", path, "{dir}", dir).Replace(template)
}

// start launches the process without waiting for it; recognised failures wrap ErrCannotLaunch.
func start(cmd *exec.Cmd) error {
	err := cmd.Start()
	if err == nil {
		go cmd.Wait()
		return nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %s", ErrCannotLaunch, err.Error())
	}
	return err
}
