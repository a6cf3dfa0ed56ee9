package service

import (
	"os"

	"golang.org/x/term"
)

// IsInteractiveEnvironment reports whether stderr is attached to a terminal
// and no CI environment is detected
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("JENKINS_URL") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
