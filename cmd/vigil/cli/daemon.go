package cli

import (
	"fmt"

	"github.com/vigilhq/cli/cmd/vigil/cli/logging"
	"github.com/vigilhq/cli/cmd/vigil/cli/paths"
	"github.com/vigilhq/cli/cmd/vigil/cli/settings"
	"github.com/vigilhq/cli/cmd/vigil/cli/watcher"

	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the checkpoint scheduler in the foreground",
		Long: "Runs the reconciliation loop until interrupted. This is the process\n" +
			"`vigil watch` spawns; run it directly for debugging.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd)
		},
	}
}

func runDaemon(cmd *cobra.Command) error {
	if !paths.Initialized() {
		return ErrNotInitialized
	}

	s, err := settings.Load()
	if err != nil {
		return err
	}

	logging.SetLogLevelGetter(func() string { return s.LogLevel })
	if err := logging.Init("daemon"); err != nil {
		return err
	}
	defer logging.Close()

	root, err := paths.RepoRoot()
	if err != nil {
		return fmt.Errorf("resolving repository root: %w", err)
	}

	w, err := watcher.Open(root)
	if err != nil {
		return err
	}

	scheduler := watcher.NewScheduler(w, s.Interval())
	return scheduler.Run(cmd.Context())
}
