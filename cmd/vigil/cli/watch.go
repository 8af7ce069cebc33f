package cli

import (
	"fmt"

	"github.com/vigilhq/cli/cmd/vigil/cli/daemonguard"
	"github.com/vigilhq/cli/cmd/vigil/cli/paths"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Start the checkpoint daemon in the background",
		Long: "Spawns the scheduler as a detached process if one is not already\n" +
			"running, and records its process id.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
}

func runWatch(cmd *cobra.Command) error {
	if !paths.Initialized() {
		return ErrNotInitialized
	}

	pidPath, err := paths.AbsPath(paths.PIDFile)
	if err != nil {
		return fmt.Errorf("resolving PID file path: %w", err)
	}
	guard := daemonguard.New(pidPath)

	if guard.Alive() {
		fmt.Fprintln(cmd.OutOrStdout(), "vigil daemon is already running")
		return nil
	}

	root, err := paths.RepoRoot()
	if err != nil {
		return fmt.Errorf("resolving repository root: %w", err)
	}

	pid, err := guard.Spawn(root, "daemon")
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully started daemon (pid %d)\n", pid)
	return nil
}
