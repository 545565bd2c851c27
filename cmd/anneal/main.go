// Package main is the entry point for the anneal CLI.
//
// anneal is a command-line tool for provisioning the external prerequisites
// of a cluster ingress stack: the IAM OIDC identity provider, the
// controller's IAM policy, the IRSA service account binding, subnet role
// tags, and the controller Helm release. Every resource is probed before it
// is touched, so re-running a partially failed run only converges what is
// still missing or drifted.
//
// Commands: init, plan, apply, version, completion.
//
// For detailed usage information, run:
//
//	anneal --help
package main

import (
	"fmt"
	"os"

	"github.com/anneal-io/anneal/cmd/anneal/commands"
	"github.com/anneal-io/anneal/cmd/anneal/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(handlers.ExitCode(err))
	}
}
