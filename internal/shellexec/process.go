package shellexec

import (
	"context"
	"strings"
)

// ProcessInfo describes one entry of the system process table.
type ProcessInfo struct {
	PID  string
	Name string
	User string
}

// KillByName force-kills all processes with the given image name using the
// platform process tools (taskkill on Windows, pkill elsewhere).
func KillByName(ctx context.Context, name string) error {
	command := "pkill -9 " + name
	if isWindows() {
		command = "taskkill /F /IM " + name
	}

	result, err := Run(ctx, command, Options{})
	if err != nil {
		return err
	}
	if !result.Success() {
		return errCommandFailed(command, result)
	}
	return nil
}

// Processes returns the current process table parsed from tasklist (Windows)
// or ps aux (elsewhere).
func Processes(ctx context.Context) ([]ProcessInfo, error) {
	if isWindows() {
		return processesWindows(ctx)
	}
	return processesUnix(ctx)
}

func processesWindows(ctx context.Context) ([]ProcessInfo, error) {
	result, err := Run(ctx, "tasklist /FO CSV /NH", Options{})
	if err != nil {
		return nil, err
	}

	var processes []ProcessInfo
	for _, line := range strings.Split(strings.TrimSpace(result.Stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(strings.ReplaceAll(line, `"`, ""), ",")
		if len(parts) >= 2 {
			processes = append(processes, ProcessInfo{Name: parts[0], PID: parts[1]})
		}
	}
	return processes, nil
}

func processesUnix(ctx context.Context) ([]ProcessInfo, error) {
	result, err := Run(ctx, "ps aux", Options{})
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	if len(lines) < 2 {
		return nil, nil
	}

	var processes []ProcessInfo
	for _, line := range lines[1:] {
		parts := strings.Fields(line)
		if len(parts) >= 11 {
			processes = append(processes, ProcessInfo{
				User: parts[0],
				PID:  parts[1],
				Name: parts[10],
			})
		}
	}
	return processes, nil
}
