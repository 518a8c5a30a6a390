// Command client is the interactive GophVault client. It lists, checks,
// adds and deletes credential records on a vault server; passwords are
// hashed and verified locally and never leave the machine in clear.
package main

import (
	"os"

	"github.com/atinyakov/GophVault/internal/client/prompt"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		prompt.Bad.Fprintln(os.Stderr, "gophvault:", err)
		os.Exit(1)
	}
}
