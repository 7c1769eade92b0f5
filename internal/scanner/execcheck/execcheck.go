// Package execcheck decides whether a launch command plausibly resolves to
// an executable without spawning anything.
package execcheck

import (
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// shellChars are the quoting and escape bytes whose presence forces the
// full shell-word parse. A command free of them splits on whitespace.
const shellChars = "\"'\\`$"

// Validate reports whether the entry's command plausibly resolves to an
// executable. When tryExec is set it is checked first and a failure is
// final, regardless of the Exec value.
func Validate(execLine, tryExec string) bool {
	if tryExec != "" && !resolves(tryExec) {
		return false
	}

	execLine = strings.TrimSpace(execLine)
	if execLine == "" {
		return false
	}

	argv, err := Split(execLine)
	if err != nil || len(argv) == 0 {
		return false
	}
	return resolves(argv[0])
}

// Split tokenizes a command line into argv. Plain commands take the fast
// whitespace split; anything containing quoting or escapes goes through a
// full shell-word parse.
func Split(cmdline string) ([]string, error) {
	if !strings.ContainsAny(cmdline, shellChars) {
		return strings.Fields(cmdline), nil
	}
	return shell.Fields(cmdline, nil)
}

// resolves checks a single command token: explicit paths are stat-checked
// for the executable bit, bare names are resolved against PATH.
func resolves(command string) bool {
	if strings.ContainsRune(command, os.PathSeparator) {
		return isExecutable(command)
	}
	_, err := exec.LookPath(command)
	return err == nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	// Execute permission for user, group, or others
	return info.Mode()&0111 != 0
}
