package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/vigilhq/cli/cmd/vigil/cli/settings"
	"github.com/vigilhq/cli/cmd/vigil/cli/telemetry"
	"github.com/vigilhq/cli/cmd/vigil/cli/versioncheck"

	"github.com/spf13/cobra"
)

const gettingStarted = `

Getting Started:
  Run 'vigil init' at the root of a git repository, then 'vigil watch'
  to start checkpointing your working directory in the background.
  Recover intermediate states with 'vigil summarize'.

`

// Version information (can be set at build time)
var (
	Version = "dev"
	Commit  = "unknown"
)

func NewRootCmd() *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "vigil",
		Short: "Background checkpoints for git working trees",
		Long: "vigil continuously snapshots your working directory into a hidden\n" +
			"checkpoint history, without touching your branch, index or commit log." +
			gettingStarted,
		// Let main.go handle error printing to avoid duplication
		SilenceErrors: true,
		// Hide completion command from help but keep it functional
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if cwd == "" {
				return nil
			}
			if err := os.Chdir(cwd); err != nil {
				return fmt.Errorf("changing directory to %s: %w", cwd, err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			// Load telemetry preference from settings (nil defaults to disabled)
			var telemetryEnabled *bool
			s, err := settings.Load()
			if err == nil {
				telemetryEnabled = s.Telemetry
			}

			telemetryClient := telemetry.NewClient(Version, telemetryEnabled)
			defer telemetryClient.Close()
			telemetryClient.TrackCommand(cmd)

			versioncheck.CheckAndNotify(cmd, Version)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&cwd, "cwd", "", "Set current working directory before running")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newDaemonCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newSummarizeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("vigil %s (%s)\n", Version, Commit)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
