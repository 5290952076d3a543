// Command advisord runs the campus advising app: server-rendered
// pages with a live WebSocket channel for updates.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "advisord",
	Short:         "Campus advising server",
	Long:          "advisord serves the campus advising app: chat, Q&A, and profile setup.\nConfiguration comes from ADVISOR_* environment variables.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "advisord:", err)
		os.Exit(1)
	}
}
