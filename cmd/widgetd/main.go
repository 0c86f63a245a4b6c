package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	werrors "github.com/provekit/widget/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "widgetd",
		Short: "Server-side widget engine for interactive prover frontends",
		Long: `widgetd serves declarative widget trees to remote view layers.

It mounts a top-level component, reconciles re-renders against the
prior tree so component identity and local state survive, and routes
user events, task completions, and mouse-capture transitions back
through each component's hook chain.

Clients connect over WebSocket (/ws) or JSON-RPC 2.0 on stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, werrors.Format(err))
		os.Exit(1)
	}
}
