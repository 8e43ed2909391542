package shellexec

import (
	"fmt"
	"runtime"

	"github.com/milkywaygod2/sysutil/internal/errors"
)

func isWindows() bool {
	return runtime.GOOS == "windows"
}

func errCommandFailed(command string, result Result) error {
	return errors.NewExecError(errors.ErrCodeCommandFailed,
		fmt.Sprintf("command exited with code %d", result.ExitCode), nil).
		WithContext("command", command).
		WithContext("stderr", result.Stderr)
}
