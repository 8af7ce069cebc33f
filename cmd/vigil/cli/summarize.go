package cli

import (
	"fmt"

	"github.com/vigilhq/cli/cmd/vigil/cli/paths"
	"github.com/vigilhq/cli/cmd/vigil/cli/settings"
	"github.com/vigilhq/cli/cmd/vigil/cli/watcher"

	"github.com/spf13/cobra"
)

func newSummarizeCmd() *cobra.Command {
	var limit int
	var redactSecrets bool

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Show recent checkpoints and their diffs",
		Long: "Walks the checkpoint history backward from the most recent checkpoint,\n" +
			"printing each commit id and a line-classified diff against its parent.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummarize(cmd, limit, redactSecrets)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of checkpoints to show (default from settings)")
	cmd.Flags().BoolVar(&redactSecrets, "redact", false, "Redact detected secrets from the output")

	return cmd
}

func runSummarize(cmd *cobra.Command, limit int, redactSecrets bool) error {
	root, err := paths.RepoRoot()
	if err != nil {
		return fmt.Errorf("resolving repository root: %w", err)
	}

	if limit <= 0 {
		s, err := settings.Load()
		if err != nil {
			return err
		}
		limit = s.SummarizeLimit
	}

	w, err := watcher.Open(root)
	if err != nil {
		return err
	}

	return w.Summarize(cmd.OutOrStdout(), watcher.SummarizeOptions{
		Limit:  limit,
		Redact: redactSecrets,
	})
}
