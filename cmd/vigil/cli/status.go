package cli

import (
	"fmt"
	"io"

	"github.com/vigilhq/cli/cmd/vigil/cli/daemonguard"
	"github.com/vigilhq/cli/cmd/vigil/cli/paths"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show vigil status",
		Long:  "Show whether vigil is initialized and whether the daemon is running",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.OutOrStdout())
		},
	}
}

func runStatus(w io.Writer) error {
	if _, repoErr := paths.RepoRoot(); repoErr != nil {
		fmt.Fprintln(w, "✕ not a git repository")
		return nil //nolint:nilerr // Not being in a git repo is a valid status, not an error
	}

	if !paths.Initialized() {
		fmt.Fprintln(w, "○ not initialized (run `vigil init` to get started)")
		return nil
	}

	fmt.Fprintln(w, "✓ vigil is initialized")

	pidPath, err := paths.AbsPath(paths.PIDFile)
	if err != nil {
		return fmt.Errorf("resolving PID file path: %w", err)
	}
	guard := daemonguard.New(pidPath)

	if guard.Alive() {
		pid, _ := guard.PID()
		fmt.Fprintf(w, "✓ daemon is running (pid %d)\n", pid)
	} else {
		fmt.Fprintln(w, "○ daemon is not running")
	}
	return nil
}
